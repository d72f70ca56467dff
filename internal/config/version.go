package config

// Version is the actorweb binary version.
// Set at build time via: -ldflags "-X github.com/persistorai/actorweb/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
