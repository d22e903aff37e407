package sdk

import (
	"github.com/estfeed/metering_sdk/api"
	"github.com/estfeed/metering_sdk/common"
	"github.com/estfeed/metering_sdk/config"
	"github.com/estfeed/metering_sdk/coordinator"
	"github.com/estfeed/metering_sdk/history"
	"github.com/estfeed/metering_sdk/storage"
)

// SDK version information
const (
	Version = "v0.1.0"
)

// Re-export main types and functions for user convenience
type (
	// Config SDK configuration
	Config = config.Config
	// EstfeedConfig per-entry feed settings
	EstfeedConfig = config.EstfeedConfig
	// SnapshotConfig snapshot storage configuration
	SnapshotConfig = config.SnapshotConfig
	// Client authenticated Estfeed API client
	Client = api.Client
	// RateLimitInfo rate limiter diagnostic snapshot
	RateLimitInfo = api.RateLimitInfo
	// HistoryStore per-EIC history cache
	HistoryStore = history.Store
	// Coordinator per-EIC refresh driver
	Coordinator = coordinator.Coordinator
	// Registry live coordinator registry
	Registry = coordinator.Registry
	// Diagnostics exportable coordinator state
	Diagnostics = coordinator.Diagnostics
	// ObjectStorageProvider storage provider interface
	ObjectStorageProvider = storage.ObjectStorageProvider
	// ProviderConfig storage provider configuration
	ProviderConfig = storage.ProviderConfig
	// ProviderType storage provider type
	ProviderType = storage.ProviderType
	// Measurement single metering record
	Measurement = common.Measurement
	// MeteringPoint metering point descriptor
	MeteringPoint = common.MeteringPoint
	// HistorySnapshot persisted history document
	HistorySnapshot = common.HistorySnapshot
	// CommodityType metering point commodity
	CommodityType = common.CommodityType
	// AWSConfig AWS specific configuration
	AWSConfig = storage.AWSConfig
	// OSSConfig OSS specific configuration
	OSSConfig = storage.OSSConfig
	// AzureConfig Azure specific configuration
	AzureConfig = storage.AzureConfig
	// LocalFSConfig local filesystem specific configuration
	LocalFSConfig = storage.LocalFSConfig
)

// Re-export constants
const (
	ProviderTypeS3      = storage.ProviderTypeS3
	ProviderTypeOSS     = storage.ProviderTypeOSS
	ProviderTypeAzure   = storage.ProviderTypeAzure
	ProviderTypeLocalFS = storage.ProviderTypeLocalFS

	CommodityElectricity = common.CommodityElectricity
	CommodityGas         = common.CommodityGas
)

// Re-export main functions
var (
	// DefaultConfig creates default configuration
	DefaultConfig = config.DefaultConfig
	// NewDebugConfig creates debug configuration
	NewDebugConfig = config.NewDebugConfig
	// NewEstfeedConfig creates feed settings with defaults
	NewEstfeedConfig = config.NewEstfeedConfig
	// NewObjectStorageProvider creates storage provider
	NewObjectStorageProvider = storage.NewObjectStorageProvider
	// NewClient creates an Estfeed API client
	NewClient = api.NewClient
	// NewHistoryStore creates a history cache for one EIC
	NewHistoryStore = history.NewStore
	// NewCoordinator creates a refresh driver for one EIC
	NewCoordinator = coordinator.New
	// NewRegistry creates a coordinator registry
	NewRegistry = coordinator.NewRegistry
)
