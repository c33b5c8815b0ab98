package config

import "strings"

// StorageConfig selects where event images are written.  Driver is
// "local" (files below LocalRoot, served under PublicPrefix) or "s3".
type StorageConfig struct {
	Driver            string
	LocalRoot         string
	PublicPrefix      string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string // custom endpoint for R2 or MinIO; empty for AWS
	S3AccessKeyID     string
	S3SecretAccessKey string
}

func LoadStorageConfig() StorageConfig {
	prefix := "/" + strings.Trim(envStr("STORAGE_PUBLIC_PREFIX", "/storage"), "/")
	return StorageConfig{
		Driver:            strings.ToLower(envStr("STORAGE_DRIVER", "local")),
		LocalRoot:         envStr("STORAGE_LOCAL_ROOT", "storage/app/public"),
		PublicPrefix:      prefix,
		S3Bucket:          envStr("S3_BUCKET", ""),
		S3Region:          envStr("S3_REGION", "us-east-1"),
		S3Endpoint:        envStr("S3_ENDPOINT", ""),
		S3AccessKeyID:     envStr("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: envStr("S3_SECRET_ACCESS_KEY", ""),
	}
}
