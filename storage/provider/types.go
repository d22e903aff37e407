package provider

// ProviderType storage provider type
type ProviderType string

const (
	// ProviderTypeS3 AWS S3 storage provider
	ProviderTypeS3 ProviderType = "s3"
	// ProviderTypeOSS Alibaba Cloud OSS storage provider
	ProviderTypeOSS ProviderType = "oss"
	// ProviderTypeAzure Azure Blob Storage provider
	ProviderTypeAzure ProviderType = "azure"
	// ProviderTypeLocalFS local filesystem storage provider
	ProviderTypeLocalFS ProviderType = "localfs"
)

// ProviderConfig storage provider configuration
type ProviderConfig struct {
	Type     ProviderType `json:"type"`
	Prefix   string       `json:"prefix,omitempty"`   // path prefix, all snapshot paths will add this prefix
	Region   string       `json:"region,omitempty"`   // common region configuration
	Bucket   string       `json:"bucket,omitempty"`   // common bucket/container name
	Endpoint string       `json:"endpoint,omitempty"` // common endpoint configuration

	// Specific provider configurations
	AWS     *AWSConfig     `json:"aws,omitempty"`     // AWS S3 specific configuration
	OSS     *OSSConfig     `json:"oss,omitempty"`     // Alibaba Cloud OSS specific configuration
	Azure   *AzureConfig   `json:"azure,omitempty"`   // Azure Blob Storage specific configuration
	LocalFS *LocalFSConfig `json:"localfs,omitempty"` // local filesystem specific configuration
}

// AWSConfig AWS S3 specific configuration
type AWSConfig struct {
	S3ForcePathStyle bool   `json:"s3_force_path_style,omitempty"`
	AssumeRoleARN    string `json:"assume_role_arn,omitempty"`
	AccessKey        string `json:"access_key,omitempty"`
	SecretAccessKey  string `json:"secret_access_key,omitempty"`
	SessionToken     string `json:"session_token,omitempty"`
	// Custom AWS Config object for aws-sdk-go-v2
	CustomConfig interface{} `json:"-"` // not serialized, used to pass aws.Config
}

// OSSConfig Alibaba Cloud OSS specific configuration
type OSSConfig struct {
	AccessKey       string `json:"access_key,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	SessionToken    string `json:"session_token,omitempty"`
	// Custom OSS Config object for oss-sdk-go-v2
	CustomConfig interface{} `json:"-"` // not serialized, used to pass oss config
}

// AzureConfig Azure Blob Storage specific configuration
type AzureConfig struct {
	AccountName string `json:"account_name,omitempty"`
	AccountKey  string `json:"account_key,omitempty"`
	SASToken    string `json:"sas_token,omitempty"`
}

// LocalFSConfig local filesystem specific configuration
type LocalFSConfig struct {
	BasePath    string `json:"base_path"`             // base path for local filesystem
	CreateDirs  bool   `json:"create_dirs,omitempty"` // whether to automatically create directories, default true
	Permissions string `json:"permissions,omitempty"` // file permissions, e.g. "0755"
}
