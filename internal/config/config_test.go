package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name             string
		yamlContent      string
		skipFileCreation bool
		wantConfig       *Config
		wantErr          string
	}{
		{
			name: "full_config",
			yamlContent: `academy:
  baseURL: https://academy.example.com/api/v1
  webURL: https://academy.example.com/
  credentialFile: /secrets/session
  requestDelay: 750ms
labs:
  baseURL: https://labs.example.com/api/v4
  requestDelay: 2s
sync:
  moduleCeiling: 300
  backfillVulnerabilities: true
  fetchMachineTags: false
  concurrentLanes: true
  interval: 12h
  requestTimeout: 10s
storage:
  statusDir: /var/lib/catalog-sync
database:
  host: localhost
  port: 5432
  user: catalog
  database: catalog
  sslMode: disable`,
			wantConfig: &Config{
				Academy: ServiceConfig{
					BaseURL:        "https://academy.example.com/api/v1",
					WebURL:         "https://academy.example.com/",
					CredentialFile: "/secrets/session",
					RequestDelay:   "750ms",
				},
				Labs: ServiceConfig{
					BaseURL:      "https://labs.example.com/api/v4",
					RequestDelay: "2s",
				},
				Sync: SyncConfig{
					ModuleCeiling:           300,
					BackfillVulnerabilities: true,
					FetchMachineTags:        boolPtr(false),
					ConcurrentLanes:         true,
					Interval:                "12h",
					RequestTimeout:          "10s",
				},
				Storage: StorageConfig{StatusDir: "/var/lib/catalog-sync"},
				Database: &DatabaseConfig{
					Host:     "localhost",
					Port:     5432,
					User:     "catalog",
					Database: "catalog",
					SSLMode:  "disable",
				},
			},
		},
		{
			name: "minimal_config",
			yamlContent: `academy:
  baseURL: https://academy.example.com/api
labs:
  baseURL: https://labs.example.com/api`,
			wantConfig: &Config{
				Academy: ServiceConfig{BaseURL: "https://academy.example.com/api"},
				Labs:    ServiceConfig{BaseURL: "https://labs.example.com/api"},
			},
		},
		{
			name: "missing_academy_base_url",
			yamlContent: `labs:
  baseURL: https://labs.example.com/api`,
			wantErr: "academy: baseURL is required",
		},
		{
			name: "relative_labs_base_url",
			yamlContent: `academy:
  baseURL: https://academy.example.com/api
labs:
  baseURL: /api`,
			wantErr: "labs: baseURL must be an absolute URL",
		},
		{
			name: "invalid_request_delay",
			yamlContent: `academy:
  baseURL: https://academy.example.com/api
  requestDelay: soon
labs:
  baseURL: https://labs.example.com/api`,
			wantErr: "academy: requestDelay must be a valid duration",
		},
		{
			name: "negative_request_delay",
			yamlContent: `academy:
  baseURL: https://academy.example.com/api
labs:
  baseURL: https://labs.example.com/api
  requestDelay: -1s`,
			wantErr: "labs: requestDelay cannot be negative",
		},
		{
			name: "negative_module_ceiling",
			yamlContent: `academy:
  baseURL: https://academy.example.com/api
labs:
  baseURL: https://labs.example.com/api
sync:
  moduleCeiling: -4`,
			wantErr: "sync: moduleCeiling cannot be negative",
		},
		{
			name: "invalid_interval",
			yamlContent: `academy:
  baseURL: https://academy.example.com/api
labs:
  baseURL: https://labs.example.com/api
sync:
  interval: daily`,
			wantErr: "sync: interval must be a valid duration",
		},
		{
			name: "database_missing_host",
			yamlContent: `academy:
  baseURL: https://academy.example.com/api
labs:
  baseURL: https://labs.example.com/api
database:
  port: 5432
  user: catalog
  database: catalog`,
			wantErr: "database: host is required",
		},
		{
			name:        "invalid_yaml",
			yamlContent: `academy: [invalid yaml`,
			wantErr:     "failed to parse YAML config",
		},
		{
			name:             "file_not_found",
			skipFileCreation: true,
			wantErr:          "failed to evaluate symlinks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			if tt.skipFileCreation {
				configPath = filepath.Join(tmpDir, "non-existent.yaml")
			} else {
				err := os.WriteFile(configPath, []byte(tt.yamlContent), 0600)
				require.NoError(t, err)
			}

			config, err := LoadConfig(WithConfigPath(configPath))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, config)
		})
	}
}

func TestLoadConfig_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")

	_, err = LoadConfig(WithConfigPath(""))
	require.Error(t, err)
}

func TestGetStorageType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StorageTypeMemory, (&Config{}).GetStorageType())
	assert.Equal(t, StorageTypeDatabase, (&Config{Database: &DatabaseConfig{}}).GetStorageType())
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, defaultStatusDir, cfg.GetStatusDir())
	assert.Equal(t, defaultModuleCeiling, cfg.Sync.GetModuleCeiling())
	assert.True(t, cfg.Sync.GetFetchMachineTags())
	assert.Equal(t, 24*time.Hour, cfg.Sync.GetInterval())
	assert.Equal(t, 30*time.Second, cfg.Sync.GetRequestTimeout())
	assert.Equal(t, time.Second, cfg.Academy.GetRequestDelay())

	cfg.Sync.FetchMachineTags = boolPtr(false)
	cfg.Sync.Interval = "90m"
	cfg.Labs.RequestDelay = "250ms"
	assert.False(t, cfg.Sync.GetFetchMachineTags())
	assert.Equal(t, 90*time.Minute, cfg.Sync.GetInterval())
	assert.Equal(t, 250*time.Millisecond, cfg.Labs.GetRequestDelay())
}

func TestServiceConfig_GetWebURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		svc      ServiceConfig
		expected string
	}{
		{
			name:     "explicit web url trims trailing slash",
			svc:      ServiceConfig{BaseURL: "https://api.example.com/v1", WebURL: "https://www.example.com/"},
			expected: "https://www.example.com",
		},
		{
			name:     "derived from base url host",
			svc:      ServiceConfig{BaseURL: "https://academy.example.com/api/v1"},
			expected: "https://academy.example.com",
		},
		{
			name:     "unparseable base url",
			svc:      ServiceConfig{BaseURL: "not a url"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.svc.GetWebURL())
		})
	}
}

func TestServiceConfig_GetCredential(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("s3cr3t\n"), 0600))

		svc := ServiceConfig{CredentialFile: path}
		got, err := svc.GetCredential(EnvLabsToken)
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", got)
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv(EnvAcademySession, "session=abc")

		svc := ServiceConfig{}
		got, err := svc.GetCredential(EnvAcademySession)
		require.NoError(t, err)
		assert.Equal(t, "session=abc", got)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv(EnvLabsToken, "")

		svc := ServiceConfig{}
		_, err := svc.GetCredential(EnvLabsToken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvLabsToken)
	})

	t.Run("unreadable file", func(t *testing.T) {
		svc := ServiceConfig{CredentialFile: filepath.Join(t.TempDir(), "missing")}
		_, err := svc.GetCredential(EnvLabsToken)
		require.Error(t, err)
	})
}

func TestDatabaseConfig_GetConnectionString(t *testing.T) {
	t.Run("password from env is escaped", func(t *testing.T) {
		t.Setenv(EnvDatabasePassword, "p@ss/word")

		db := &DatabaseConfig{Host: "db", Port: 5432, User: "catalog", Database: "catalog"}
		conn, err := db.GetConnectionString()
		require.NoError(t, err)
		assert.Equal(t, "postgres://catalog:p%40ss%2Fword@db:5432/catalog?sslmode=require", conn)
	})

	t.Run("password file wins", func(t *testing.T) {
		t.Setenv(EnvDatabasePassword, "from-env")
		path := filepath.Join(t.TempDir(), "pw")
		require.NoError(t, os.WriteFile(path, []byte("from-file  \n"), 0600))

		db := &DatabaseConfig{
			Host: "db", Port: 5433, User: "u", Database: "d", SSLMode: "disable", PasswordFile: path,
		}
		conn, err := db.GetConnectionString()
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:from-file@db:5433/d?sslmode=disable", conn)
	})

	t.Run("no password", func(t *testing.T) {
		t.Setenv(EnvDatabasePassword, "")

		db := &DatabaseConfig{Host: "db", Port: 5432, User: "u", Database: "d"}
		_, err := db.GetConnectionString()
		require.Error(t, err)
	})
}
