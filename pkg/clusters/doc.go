// Package clusters is the model layer for user-defined record schemas.
//
// A Repository creates, lists and deletes clusters. A SchemaEditor opens a
// SchemaDraft that stages field additions, renames, moves and removals and
// reconciles them against storage in one transaction on Commit. An
// ItemEditor opens an ItemDraft for creating or editing one item's values.
//
// Item values are keyed by field name. Renaming or removing a field never
// rewrites item data; values stored under names that no field carries any
// more stay on the item and are reported by types.Item.ArchivedFields.
package clusters
