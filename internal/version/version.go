package version

// Version is set at build time with -ldflags "-X github.com/netxfw/testsel/internal/version.Version=v1.2.3".
// Version 在构建时通过 -ldflags 设置。
var Version = "dev"
