package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/estfeed/metering_sdk/storage"
	"gopkg.in/yaml.v3"
)

// SnapshotAWSConfig AWS S3 specific configuration for high-level config
type SnapshotAWSConfig struct {
	AssumeRoleARN    string `yaml:"assume-role-arn,omitempty" toml:"assume-role-arn,omitempty" json:"assume-role-arn,omitempty"`
	S3ForcePathStyle bool   `yaml:"s3-force-path-style,omitempty" toml:"s3-force-path-style,omitempty" json:"s3-force-path-style,omitempty"`
	AccessKey        string `yaml:"access-key,omitempty" toml:"access-key,omitempty" json:"access-key,omitempty"`
	SecretAccessKey  string `yaml:"secret-access-key,omitempty" toml:"secret-access-key,omitempty" json:"secret-access-key,omitempty"`
	SessionToken     string `yaml:"session-token,omitempty" toml:"session-token,omitempty" json:"session-token,omitempty"`
}

// SnapshotOSSConfig Alibaba Cloud OSS specific configuration for high-level config
type SnapshotOSSConfig struct {
	AccessKey       string `yaml:"access-key,omitempty" toml:"access-key,omitempty" json:"access-key,omitempty"`
	SecretAccessKey string `yaml:"secret-access-key,omitempty" toml:"secret-access-key,omitempty" json:"secret-access-key,omitempty"`
	SessionToken    string `yaml:"session-token,omitempty" toml:"session-token,omitempty" json:"session-token,omitempty"`
}

// SnapshotAzureConfig Azure Blob specific configuration for high-level config
type SnapshotAzureConfig struct {
	AccountName string `yaml:"account-name,omitempty" toml:"account-name,omitempty" json:"account-name,omitempty"`
	AccountKey  string `yaml:"account-key,omitempty" toml:"account-key,omitempty" json:"account-key,omitempty"`
	SASToken    string `yaml:"sas-token,omitempty" toml:"sas-token,omitempty" json:"sas-token,omitempty"`
}

// SnapshotLocalFSConfig local filesystem specific configuration for high-level config
type SnapshotLocalFSConfig struct {
	BasePath    string `yaml:"base-path,omitempty" toml:"base-path,omitempty" json:"base-path,omitempty"`
	CreateDirs  bool   `yaml:"create-dirs,omitempty" toml:"create-dirs,omitempty" json:"create-dirs,omitempty"`
	Permissions string `yaml:"permissions,omitempty" toml:"permissions,omitempty" json:"permissions,omitempty"`
}

// SnapshotConfig is the high-level configuration of where history snapshots
// live. It combines the storage provider selection with provider-specific
// credentials and converts down to a storage.ProviderConfig.
type SnapshotConfig struct {
	// Storage provider type: s3, oss, azure, localfs
	Type storage.ProviderType `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	// Storage region
	Region string `yaml:"region,omitempty" toml:"region,omitempty" json:"region,omitempty"`
	// Storage bucket/container name
	Bucket string `yaml:"bucket,omitempty" toml:"bucket,omitempty" json:"bucket,omitempty"`
	// Path prefix for all stored snapshots
	Prefix string `yaml:"prefix,omitempty" toml:"prefix,omitempty" json:"prefix,omitempty"`
	// Custom endpoint for S3-compatible services
	Endpoint string `yaml:"endpoint,omitempty" toml:"endpoint,omitempty" json:"endpoint,omitempty"`

	// Provider-specific configurations
	AWS     *SnapshotAWSConfig     `yaml:"aws,omitempty" toml:"aws,omitempty" json:"aws,omitempty"`
	OSS     *SnapshotOSSConfig     `yaml:"oss,omitempty" toml:"oss,omitempty" json:"oss,omitempty"`
	Azure   *SnapshotAzureConfig   `yaml:"azure,omitempty" toml:"azure,omitempty" json:"azure,omitempty"`
	LocalFS *SnapshotLocalFSConfig `yaml:"localfs,omitempty" toml:"localfs,omitempty" json:"localfs,omitempty"`
}

// NewSnapshotConfig creates a new SnapshotConfig with default values
func NewSnapshotConfig() *SnapshotConfig {
	return &SnapshotConfig{}
}

// WithS3 configures for AWS S3 storage
func (sc *SnapshotConfig) WithS3(region, bucket string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeS3
	sc.Region = region
	sc.Bucket = bucket
	return sc
}

// WithS3AssumeRole configures for AWS S3 storage with assume role
func (sc *SnapshotConfig) WithS3AssumeRole(region, bucket, roleARN string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeS3
	sc.Region = region
	sc.Bucket = bucket
	if sc.AWS == nil {
		sc.AWS = &SnapshotAWSConfig{}
	}
	sc.AWS.AssumeRoleARN = roleARN
	return sc
}

// WithOSS configures for Alibaba Cloud OSS storage
func (sc *SnapshotConfig) WithOSS(region, bucket string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeOSS
	sc.Region = region
	sc.Bucket = bucket
	return sc
}

// WithAzure configures for Azure Blob storage
func (sc *SnapshotConfig) WithAzure(accountName, container string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeAzure
	sc.Bucket = container
	if sc.Azure == nil {
		sc.Azure = &SnapshotAzureConfig{}
	}
	sc.Azure.AccountName = accountName
	return sc
}

// WithLocalFS configures for local filesystem storage
func (sc *SnapshotConfig) WithLocalFS(basePath string) *SnapshotConfig {
	sc.Type = storage.ProviderTypeLocalFS
	if sc.LocalFS == nil {
		sc.LocalFS = &SnapshotLocalFSConfig{}
	}
	sc.LocalFS.BasePath = basePath
	sc.LocalFS.CreateDirs = true
	return sc
}

// WithPrefix sets the path prefix
func (sc *SnapshotConfig) WithPrefix(prefix string) *SnapshotConfig {
	sc.Prefix = prefix
	return sc
}

// WithEndpoint sets the custom endpoint
func (sc *SnapshotConfig) WithEndpoint(endpoint string) *SnapshotConfig {
	sc.Endpoint = endpoint
	return sc
}

// ToProviderConfig converts SnapshotConfig to storage.ProviderConfig
func (sc *SnapshotConfig) ToProviderConfig() *storage.ProviderConfig {
	config := &storage.ProviderConfig{
		Type:     sc.Type,
		Region:   sc.Region,
		Bucket:   sc.Bucket,
		Prefix:   sc.Prefix,
		Endpoint: sc.Endpoint,
	}

	switch sc.Type {
	case storage.ProviderTypeS3:
		if sc.AWS != nil {
			config.AWS = &storage.AWSConfig{
				AssumeRoleARN:    sc.AWS.AssumeRoleARN,
				S3ForcePathStyle: sc.AWS.S3ForcePathStyle,
				AccessKey:        sc.AWS.AccessKey,
				SecretAccessKey:  sc.AWS.SecretAccessKey,
				SessionToken:     sc.AWS.SessionToken,
			}
		}
	case storage.ProviderTypeOSS:
		if sc.OSS != nil {
			config.OSS = &storage.OSSConfig{
				AccessKey:       sc.OSS.AccessKey,
				SecretAccessKey: sc.OSS.SecretAccessKey,
				SessionToken:    sc.OSS.SessionToken,
			}
		}
	case storage.ProviderTypeAzure:
		if sc.Azure != nil {
			config.Azure = &storage.AzureConfig{
				AccountName: sc.Azure.AccountName,
				AccountKey:  sc.Azure.AccountKey,
				SASToken:    sc.Azure.SASToken,
			}
		}
	case storage.ProviderTypeLocalFS:
		if sc.LocalFS != nil {
			config.LocalFS = &storage.LocalFSConfig{
				BasePath:    sc.LocalFS.BasePath,
				CreateDirs:  sc.LocalFS.CreateDirs,
				Permissions: sc.LocalFS.Permissions,
			}
		}
	}

	return config
}

// NewFromURI creates a new SnapshotConfig from a URI string.
// URI format: [scheme]://[bucket]/[prefix]?[parameters]
// Examples:
//   - s3://my-bucket/history?region-id=eu-central-1&endpoint=https://s3.example.com
//   - oss://my-bucket/history?region-id=oss-eu-central-1&access-key=AKSKEXAMPLE
//   - azure://my-container/history?account-name=myaccount
//   - localfs:///var/lib/estfeed/history?create-dirs=true&permissions=0755
//
// Supported schemes: s3, oss, azure, localfs, file
// Common parameters: region-id/region, endpoint, prefix
// AWS/S3 parameters: access-key, secret-access-key, session-token, assume-role-arn/role-arn, s3-force-path-style/force-path-style
// OSS parameters: access-key, secret-access-key, session-token
// Azure parameters: account-name, account-key, sas-token
// LocalFS parameters: create-dirs, permissions
func NewFromURI(uriStr string) (*SnapshotConfig, error) {
	parsedURL, err := url.Parse(uriStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URI: %w", err)
	}

	config := NewSnapshotConfig()

	// Parse scheme to determine provider type
	switch strings.ToLower(parsedURL.Scheme) {
	case "s3":
		config.Type = storage.ProviderTypeS3
	case "oss":
		config.Type = storage.ProviderTypeOSS
	case "azure":
		config.Type = storage.ProviderTypeAzure
	case "localfs", "file":
		config.Type = storage.ProviderTypeLocalFS
	default:
		return nil, fmt.Errorf("unsupported URI scheme: %s", parsedURL.Scheme)
	}

	// Parse host and path based on provider type
	if config.Type == storage.ProviderTypeLocalFS {
		// For localfs, handle different path formats
		var basePath string
		if parsedURL.Host != "" {
			// For URI like "localfs://host/path", combine host and path
			hostPath := "/" + parsedURL.Host
			if parsedURL.Path != "" && parsedURL.Path != "/" {
				cleanPath := strings.TrimPrefix(parsedURL.Path, "/")
				basePath = hostPath + "/" + cleanPath
			} else {
				basePath = hostPath
			}
		} else {
			// For URI like "file:///path" or "localfs:///path", use path directly
			basePath = parsedURL.Path
		}
		config.LocalFS = &SnapshotLocalFSConfig{
			BasePath:   basePath,
			CreateDirs: true, // default
		}
	} else {
		// For cloud providers, host is bucket/container name
		if parsedURL.Host != "" {
			config.Bucket = parsedURL.Host
		}

		// Path is the prefix (remove leading slash)
		if parsedURL.Path != "" {
			config.Prefix = strings.TrimPrefix(parsedURL.Path, "/")
		}
	}

	// Parse query parameters
	queryParams := parsedURL.Query()

	// Common parameters
	regionID := queryParams.Get("region-id")
	if regionID == "" {
		regionID = queryParams.Get("region")
	}
	if regionID != "" {
		config.Region = regionID
	}
	if prefix := queryParams.Get("prefix"); prefix != "" {
		config.Prefix = prefix
	}
	if endpoint := queryParams.Get("endpoint"); endpoint != "" {
		config.Endpoint = endpoint
	}

	// Provider-specific parameters
	switch config.Type {
	case storage.ProviderTypeS3:
		awsConfig := &SnapshotAWSConfig{}
		hasAWSConfig := false

		if accessKey := queryParams.Get("access-key"); accessKey != "" {
			awsConfig.AccessKey = accessKey
			hasAWSConfig = true
		}
		if secretKey := queryParams.Get("secret-access-key"); secretKey != "" {
			awsConfig.SecretAccessKey = secretKey
			hasAWSConfig = true
		}
		if sessionToken := queryParams.Get("session-token"); sessionToken != "" {
			awsConfig.SessionToken = sessionToken
			hasAWSConfig = true
		}
		// Support both "assume-role-arn" and "role-arn" parameter names
		roleARN := queryParams.Get("assume-role-arn")
		if roleARN == "" {
			roleARN = queryParams.Get("role-arn")
		}
		if roleARN != "" {
			awsConfig.AssumeRoleARN = roleARN
			hasAWSConfig = true
		}
		// Support both "s3-force-path-style" and "force-path-style" parameter names
		forcePathStyle := queryParams.Get("s3-force-path-style")
		if forcePathStyle == "" {
			forcePathStyle = queryParams.Get("force-path-style")
		}
		if forcePathStyle == "true" {
			awsConfig.S3ForcePathStyle = true
			hasAWSConfig = true
		}

		if hasAWSConfig {
			config.AWS = awsConfig
		}

	case storage.ProviderTypeOSS:
		ossConfig := &SnapshotOSSConfig{}
		hasOSSConfig := false

		if accessKey := queryParams.Get("access-key"); accessKey != "" {
			ossConfig.AccessKey = accessKey
			hasOSSConfig = true
		}
		if secretKey := queryParams.Get("secret-access-key"); secretKey != "" {
			ossConfig.SecretAccessKey = secretKey
			hasOSSConfig = true
		}
		if sessionToken := queryParams.Get("session-token"); sessionToken != "" {
			ossConfig.SessionToken = sessionToken
			hasOSSConfig = true
		}

		if hasOSSConfig {
			config.OSS = ossConfig
		}

	case storage.ProviderTypeAzure:
		azureConfig := &SnapshotAzureConfig{}
		hasAzureConfig := false

		if accountName := queryParams.Get("account-name"); accountName != "" {
			azureConfig.AccountName = accountName
			hasAzureConfig = true
		}
		if accountKey := queryParams.Get("account-key"); accountKey != "" {
			azureConfig.AccountKey = accountKey
			hasAzureConfig = true
		}
		if sasToken := queryParams.Get("sas-token"); sasToken != "" {
			azureConfig.SASToken = sasToken
			hasAzureConfig = true
		}

		if hasAzureConfig {
			config.Azure = azureConfig
		}

	case storage.ProviderTypeLocalFS:
		if config.LocalFS == nil {
			config.LocalFS = &SnapshotLocalFSConfig{CreateDirs: true}
		}

		if createDirs := queryParams.Get("create-dirs"); createDirs == "false" {
			config.LocalFS.CreateDirs = false
		}
		if permissions := queryParams.Get("permissions"); permissions != "" {
			config.LocalFS.Permissions = permissions
		}
	}

	return config, nil
}

// ToURI converts SnapshotConfig to a URI string.
// URI format: [scheme]://[bucket]/[prefix]?[parameters]
func (sc *SnapshotConfig) ToURI() string {
	var uri strings.Builder
	var params url.Values = make(url.Values)

	// Determine scheme based on provider type
	switch sc.Type {
	case storage.ProviderTypeS3:
		uri.WriteString("s3://")
	case storage.ProviderTypeOSS:
		uri.WriteString("oss://")
	case storage.ProviderTypeAzure:
		uri.WriteString("azure://")
	case storage.ProviderTypeLocalFS:
		uri.WriteString("localfs://")
	default:
		return ""
	}

	// Build host and path based on provider type
	if sc.Type == storage.ProviderTypeLocalFS {
		// For localfs, handle the base path properly
		if sc.LocalFS != nil && sc.LocalFS.BasePath != "" {
			// Remove any leading slash to avoid double slashes with scheme
			basePath := strings.TrimPrefix(sc.LocalFS.BasePath, "/")
			uri.WriteString("/")
			uri.WriteString(basePath)
		}
	} else {
		// For cloud providers, host is bucket/container name
		if sc.Bucket != "" {
			uri.WriteString(sc.Bucket)
		}

		// Path is the prefix
		if sc.Prefix != "" {
			uri.WriteString("/")
			uri.WriteString(sc.Prefix)
		}
	}

	// Add common parameters
	if sc.Region != "" {
		params.Set("region-id", sc.Region)
	}
	if sc.Endpoint != "" {
		params.Set("endpoint", sc.Endpoint)
	}

	// Add provider-specific parameters
	switch sc.Type {
	case storage.ProviderTypeS3:
		if sc.AWS != nil {
			if sc.AWS.AccessKey != "" {
				params.Set("access-key", sc.AWS.AccessKey)
			}
			if sc.AWS.SecretAccessKey != "" {
				params.Set("secret-access-key", sc.AWS.SecretAccessKey)
			}
			if sc.AWS.SessionToken != "" {
				params.Set("session-token", sc.AWS.SessionToken)
			}
			if sc.AWS.AssumeRoleARN != "" {
				params.Set("assume-role-arn", sc.AWS.AssumeRoleARN)
			}
			if sc.AWS.S3ForcePathStyle {
				params.Set("s3-force-path-style", "true")
			}
		}

	case storage.ProviderTypeOSS:
		if sc.OSS != nil {
			if sc.OSS.AccessKey != "" {
				params.Set("access-key", sc.OSS.AccessKey)
			}
			if sc.OSS.SecretAccessKey != "" {
				params.Set("secret-access-key", sc.OSS.SecretAccessKey)
			}
			if sc.OSS.SessionToken != "" {
				params.Set("session-token", sc.OSS.SessionToken)
			}
		}

	case storage.ProviderTypeAzure:
		if sc.Azure != nil {
			if sc.Azure.AccountName != "" {
				params.Set("account-name", sc.Azure.AccountName)
			}
			if sc.Azure.AccountKey != "" {
				params.Set("account-key", sc.Azure.AccountKey)
			}
			if sc.Azure.SASToken != "" {
				params.Set("sas-token", sc.Azure.SASToken)
			}
		}

	case storage.ProviderTypeLocalFS:
		if sc.LocalFS != nil {
			if !sc.LocalFS.CreateDirs {
				params.Set("create-dirs", "false")
			}
			if sc.LocalFS.Permissions != "" {
				params.Set("permissions", sc.LocalFS.Permissions)
			}
		}
	}

	// Add query parameters if any exist
	if len(params) > 0 {
		uri.WriteString("?")
		uri.WriteString(params.Encode())
	}

	return uri.String()
}

// FileConfig is the on-disk configuration document combining the feed entry
// settings with the snapshot storage selection.
type FileConfig struct {
	Estfeed  EstfeedConfig  `yaml:"estfeed" toml:"estfeed" json:"estfeed"`
	Snapshot SnapshotConfig `yaml:"snapshot" toml:"snapshot" json:"snapshot"`
}

// LoadFile reads a FileConfig from a .toml, .yaml/.yml, or .json file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}

	return &cfg, nil
}
