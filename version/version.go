package version

// Version is the current release of the raksha server.
const Version = "0.1.0"
