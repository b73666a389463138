package clusters

// Version is the release version of the clusters module.
const Version = "0.1.0"
