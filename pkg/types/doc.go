// Package types defines the Store and Table interfaces, the cluster, field
// definition and item entities, the field value store, and the standard
// errors for the clusters storage system.
//
// Entities reference each other by ID only. A FieldDefinition or Item names
// its owning cluster through ClusterID; nothing holds a live pointer to
// another entity.
package types
