package omophub

// Version is the library version, overridden at build time for releases.
var Version = "0.3.0"

// UserAgent returns the default User-Agent header value.
func UserAgent() string {
	return "omophub-go/" + Version
}
