package transit

// Version is the release of the module. Release builds override it with
// -ldflags "-X github.com/aretw0/transit.Version=...".
var Version = "dev"
