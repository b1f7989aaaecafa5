package server

// StorageServerConfig holds blob storage configuration
type StorageServerConfig struct {
	// UploadDirectory is the root directory holding one blob per record
	UploadDirectory string `mapstructure:"upload_directory" yaml:"upload_directory"`

	// MaxUploadSize is the payload ceiling in bytes
	MaxUploadSize int64 `mapstructure:"max_upload_size" yaml:"max_upload_size"`

	// URLPrefix is the public path prefix blobs are served under
	URLPrefix string `mapstructure:"url_prefix" yaml:"url_prefix"`

	// AllowedExtensions and AllowedMimetypes override the built-in
	// validation allow-lists when non-empty
	AllowedExtensions []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions"`
	AllowedMimetypes  []string `mapstructure:"allowed_mimetypes"  yaml:"allowed_mimetypes"`
}
