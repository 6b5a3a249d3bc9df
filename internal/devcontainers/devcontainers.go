// Package devcontainers starts throwaway database and Redis containers for local
// development and integration tests.
package devcontainers

import (
	"context"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/localnerve/macrosdb/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects what to start. Empty fields take the defaults below.
type Options struct {
	DBType     string // sqlserver, mysql or postgres
	DBImage    string
	Database   string
	DBUser     string
	DBPassword string
	Redis      bool
	RedisImage string
}

func (o *Options) defaults() {
	if o.DBType == "" {
		o.DBType = "sqlserver"
	}
	if o.Database == "" {
		o.Database = "macrosdb"
	}
	if o.DBPassword == "" {
		o.DBPassword = "Macros#Dev2026"
	}
	if o.RedisImage == "" {
		o.RedisImage = "redis:7-alpine"
	}
	switch o.DBType {
	case "mysql", "mariadb":
		if o.DBImage == "" {
			o.DBImage = "mysql:8.4"
		}
		if o.DBUser == "" {
			o.DBUser = "macros"
		}
	case "postgres", "postgresql":
		if o.DBImage == "" {
			o.DBImage = "postgres:16-alpine"
		}
		if o.DBUser == "" {
			o.DBUser = "macros"
		}
	default:
		if o.DBImage == "" {
			o.DBImage = "mcr.microsoft.com/mssql/server:2022-latest"
		}
		o.DBUser = "sa"
	}
}

// Containers holds the started containers and where to reach them from the host
type Containers struct {
	Network  *testcontainers.DockerNetwork
	Database testcontainers.Container
	Redis    testcontainers.Container

	options  Options
	dbHost   string
	dbPort   nat.Port
	redisURL string
}

// Terminate stops everything that was started
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.Redis != nil {
		if err := tc.Redis.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Redis: %v", err)
		}
	}
	if tc.Database != nil {
		if err := tc.Database.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate %s: %v", tc.options.DBType, err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// Config returns a configuration pointing at the started containers
func (tc *Containers) Config() *config.Config {
	return &config.Config{
		Port:               "3000",
		LogLevel:           "info",
		DBType:             tc.options.DBType,
		DBHost:             tc.dbHost,
		DBPort:             tc.dbPort.Port(),
		DBDatabase:         tc.options.Database,
		DBUser:             tc.options.DBUser,
		DBPassword:         tc.options.DBPassword,
		DBConnectionLimit:  10,
		RedisURL:           tc.redisURL,
		JWTSecret:          "devcontainers-secret-0123456789abcdef",
		JWTTTLHours:        72,
		LoginRatePerMinute: 10,
	}
}

// Start creates a network, the database container and optionally Redis. t may be nil
// outside tests, progress then goes to stdout.
func Start(t *testing.T, opts Options) (*Containers, error) {
	ctx := context.Background()
	opts.defaults()
	tc := &Containers{options: opts}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	port, env := databasePort(opts)
	reportImage(ctx, t, opts.DBImage)

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.DBImage,
			ExposedPorts: []string{string(port)},
			Env:          env,
			WaitingFor:   wait.ForListeningPort(port).WithStartupTimeout(120 * time.Second),
			Networks:     []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {"db"},
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to start %s: %w", opts.DBType, err)
	}
	tc.Database = dbContainer

	tc.dbHost, _ = dbContainer.Host(ctx)
	tc.dbPort, err = dbContainer.MappedPort(ctx, port)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to map database port: %w", err)
	}
	logMessage(t, "DB_HOST=%s DB_PORT=%s", tc.dbHost, tc.dbPort.Port())

	if opts.DBType == "sqlserver" {
		if err := createSQLServerDatabase(tc); err != nil {
			tc.Terminate(t)
			return nil, err
		}
	}

	if opts.Redis {
		redisPort, _ := nat.NewPort("tcp", "6379")
		reportImage(ctx, t, opts.RedisImage)
		redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        opts.RedisImage,
				ExposedPorts: []string{string(redisPort)},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
				Networks:     []string{nw.Name},
				NetworkAliases: map[string][]string{
					nw.Name: {"redis"},
				},
			},
			Started: true,
		})
		if err != nil {
			tc.Terminate(t)
			return nil, fmt.Errorf("failed to start Redis: %w", err)
		}
		tc.Redis = redisContainer

		host, _ := redisContainer.Host(ctx)
		mapped, err := redisContainer.MappedPort(ctx, redisPort)
		if err != nil {
			tc.Terminate(t)
			return nil, fmt.Errorf("failed to map Redis port: %w", err)
		}
		tc.redisURL = fmt.Sprintf("redis://%s/0", net.JoinHostPort(host, mapped.Port()))
		logMessage(t, "REDIS_URL=%s", tc.redisURL)
	}

	return tc, nil
}

func databasePort(opts Options) (nat.Port, map[string]string) {
	switch opts.DBType {
	case "mysql", "mariadb":
		port, _ := nat.NewPort("tcp", "3306")
		return port, map[string]string{
			"MYSQL_ROOT_PASSWORD": opts.DBPassword,
			"MYSQL_DATABASE":      opts.Database,
			"MYSQL_USER":          opts.DBUser,
			"MYSQL_PASSWORD":      opts.DBPassword,
		}
	case "postgres", "postgresql":
		port, _ := nat.NewPort("tcp", "5432")
		return port, map[string]string{
			"POSTGRES_PASSWORD": opts.DBPassword,
			"POSTGRES_USER":     opts.DBUser,
			"POSTGRES_DB":       opts.Database,
		}
	}
	port, _ := nat.NewPort("tcp", "1433")
	return port, map[string]string{
		"ACCEPT_EULA":       "Y",
		"MSSQL_SA_PASSWORD": opts.DBPassword,
		"MSSQL_PID":         "Developer",
	}
}

// createSQLServerDatabase creates the application database; the image only has master
func createSQLServerDatabase(tc *Containers) error {
	dsn := fmt.Sprintf("sqlserver://%s:%s@%s?database=master",
		tc.options.DBUser, tc.options.DBPassword, net.JoinHostPort(tc.dbHost, tc.dbPort.Port()))
	db, err := gorm.Open(sqlserver.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("failed to open SQL Server master: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// The port opens before the server accepts logins
	for i := 0; i < 30; i++ {
		err = sqlDB.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("SQL Server not ready after 30 seconds: %w", err)
	}

	create := fmt.Sprintf("IF DB_ID(N'%[1]s') IS NULL CREATE DATABASE [%[1]s]", tc.options.Database)
	if err := db.Exec(create).Error; err != nil {
		return fmt.Errorf("failed to create database %s: %w", tc.options.Database, err)
	}
	return nil
}

// reportImage logs whether an image will be pulled, which can take minutes for SQL Server
func reportImage(ctx context.Context, t *testing.T, imageName string) {
	exists, err := imageExists(ctx, imageName)
	switch {
	case err != nil:
		logMessage(t, "Could not list local images: %v", err)
	case exists:
		logMessage(t, "Image %s exists, reusing...", imageName)
	default:
		logMessage(t, "Image %s does not exist, pulling...", imageName)
	}
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

// Enabled reports whether container tests should run
func Enabled() bool {
	return os.Getenv("MACROSDB_INTEGRATION") == "1"
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
