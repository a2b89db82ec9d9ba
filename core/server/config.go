package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// UploadLimitMB caps the request body of workbook uploads.
	UploadLimitMB int `mapstructure:"upload_limit_mb" default:"64"`
}

// BodyLimit returns the upload limit in bytes.
func (c Config) BodyLimit() int {
	if c.UploadLimitMB <= 0 {
		return 64 << 20
	}
	return c.UploadLimitMB << 20
}
