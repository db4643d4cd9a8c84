package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mosbookings/internal/bootstrap"
	"mosbookings/internal/domain"
	"mosbookings/internal/shared"
)

func TestBuild_WiresRedisStores(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := shared.Config{
		APIBase:        "http://127.0.0.1:1",
		RedisAddr:      mr.Addr(),
		RedisSessionDB: 0,
		RedisPrefsDB:   1,
		Namespace:      "boot",
		ExportDir:      t.TempDir(),
		UploadWorkers:  2,
	}
	a, err := bootstrap.Build(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	require.NoError(t, a.Services.Sessions.SetPreferences(ctx, domain.Preferences{DarkMode: true}))
	mr.Select(1)
	assert.Equal(t, "1", mr.HGet("boot:settings", "dark_mode"))

	_, err = a.Services.Sessions.Require(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.Equal(t, []string{"pdf", "xlsx"}, a.Exports.Formats())
}

func TestBuild_Failures(t *testing.T) {
	_, err := bootstrap.Build(context.Background(), shared.Config{APIBase: "not a url"})
	assert.Error(t, err)

	_, err = bootstrap.Build(context.Background(), shared.Config{APIBase: "http://127.0.0.1:1", RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestExportDSN_ForcesTimeParsing(t *testing.T) {
	dsn, err := bootstrap.ExportDSN("app:secret@tcp(db:3306)/mosbookings")
	require.NoError(t, err)

	c, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, c.ParseTime)
	assert.Equal(t, time.UTC, c.Loc)
	assert.Equal(t, "app", c.User)
	assert.Equal(t, "db:3306", c.Addr)
	assert.Equal(t, "mosbookings", c.DBName)

	// explicit opt-outs are overridden
	dsn, err = bootstrap.ExportDSN("app:secret@tcp(db:3306)/mosbookings?parseTime=false&loc=Local")
	require.NoError(t, err)
	c, err = mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, c.ParseTime)
	assert.Equal(t, time.UTC, c.Loc)
}

func TestBuild_RejectsMalformedDSN(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := shared.Config{
		APIBase:   "http://127.0.0.1:1",
		RedisAddr: mr.Addr(),
		MySQLDSN:  "not a dsn",
		ExportDir: t.TempDir(),
	}
	_, err := bootstrap.Build(context.Background(), cfg)
	assert.ErrorContains(t, err, "parse MYSQL_DSN")
}
