package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/allblack/restaurant-app/auth"
	"github.com/allblack/restaurant-app/config"
	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKiosk(t *testing.T) (*auth.Manager, *repository.AccountRepository) {
	t.Helper()
	db, err := config.InitDB(config.Config{
		DBDriver: "sqlite",
		DBDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	accounts := repository.NewAccountRepository(db)
	ctx := context.Background()
	table := models.Account{Username: "Mesa 01"}
	admin := models.Account{Username: "admin", Phone: "11900000000", IsAdmin: true}
	require.NoError(t, auth.ProvisionAccount(ctx, accounts, &table, ""))
	require.NoError(t, auth.ProvisionAccount(ctx, accounts, &admin, "admin123"))

	manager := auth.NewManager(accounts, repository.NewSessionRepository(db),
		auth.NewFileIdentityStore(filepath.Join(t.TempDir(), "allblack_user.json")))
	t.Cleanup(manager.Logout)
	return manager, accounts
}

func exec(t *testing.T, manager *auth.Manager, line string) string {
	t.Helper()
	var out bytes.Buffer
	assert.True(t, execute(context.Background(), manager, strings.Fields(line), &out))
	return strings.TrimSpace(out.String())
}

func TestKioskSession(t *testing.T) {
	manager, _ := setupKiosk(t)

	assert.Equal(t, "not logged in", exec(t, manager, "whoami"))
	assert.Equal(t, "ok", exec(t, manager, "table Mesa 01"))
	assert.Equal(t, "Mesa 01 (customer)", exec(t, manager, "whoami"))
	assert.True(t, manager.AutoLogoutArmed())

	assert.Equal(t, "ok", exec(t, manager, "admin admin admin123"))
	assert.Equal(t, "admin (admin)", exec(t, manager, "whoami"))
	assert.False(t, manager.AutoLogoutArmed())

	assert.Equal(t, "logged out", exec(t, manager, "logout"))
	assert.Equal(t, "not logged in", exec(t, manager, "whoami"))
}

func TestKioskRejections(t *testing.T) {
	manager, _ := setupKiosk(t)

	assert.Equal(t, "invalid credentials", exec(t, manager, "table Mesa 99"))
	assert.Equal(t, "invalid credentials", exec(t, manager, "admin admin nope"))
	assert.Equal(t, "invalid credentials", exec(t, manager, "qr not-a-table"))
	assert.Equal(t, "unknown command, try help", exec(t, manager, "staff onlyname"))
	assert.Equal(t, "", exec(t, manager, ""))
}

func TestKioskRegister(t *testing.T) {
	manager, accounts := setupKiosk(t)

	assert.Equal(t, "ok", exec(t, manager, "register joao 11987654321 joao123 admin admin123"))
	assert.Equal(t, "username already in use", exec(t, manager, "register joao 11987654321 joao123 admin admin123"))

	exists, err := accounts.UsernameExists(context.Background(), "joao")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "ok", exec(t, manager, "staff joao joao123"))
	assert.Equal(t, "joao (employee)", exec(t, manager, "whoami"))
}

func TestKioskQRAndSlug(t *testing.T) {
	manager, accounts := setupKiosk(t)
	table, err := accounts.FindCustomerByUsername(context.Background(), "Mesa 01")
	require.NoError(t, err)

	assert.Equal(t, "ok", exec(t, manager, "qr "+auth.DeepLink("https://allblack.example", table.Slug)))
	assert.Equal(t, "ok", exec(t, manager, "slug "+table.Slug))
	assert.Equal(t, "invalid credentials", exec(t, manager, "slug mesa-99-00000000"))
}

func TestRunStopsOnQuit(t *testing.T) {
	manager, _ := setupKiosk(t)
	var out bytes.Buffer

	run(context.Background(), manager, strings.NewReader("table Mesa 01\nquit\nwhoami\n"), &out)

	assert.Contains(t, out.String(), "ok")
	assert.NotContains(t, out.String(), "(customer)")
}

func TestAutoLogoutNoticeSharesOutput(t *testing.T) {
	db, err := config.InitDB(config.Config{
		DBDriver: "sqlite",
		DBDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	accounts := repository.NewAccountRepository(db)
	table := models.Account{Username: "Mesa 01"}
	require.NoError(t, auth.ProvisionAccount(context.Background(), accounts, &table, ""))

	var buf bytes.Buffer
	out := &syncWriter{w: &buf}
	expired := make(chan struct{})
	manager := auth.NewManager(accounts, repository.NewSessionRepository(db),
		auth.NewFileIdentityStore(filepath.Join(t.TempDir(), "allblack_user.json")),
		auth.WithAutoLogoutAfter(50*time.Millisecond),
		auth.WithAutoLogoutHook(func(identity auth.Identity) {
			fmt.Fprintf(out, "\nsession for %s expired, logged out\n> ", identity.Username)
			close(expired)
		}),
	)
	t.Cleanup(manager.Logout)

	require.True(t, execute(context.Background(), manager, []string{"table", "Mesa", "01"}, out))
	for i := 0; i < 200; i++ {
		execute(context.Background(), manager, []string{"whoami"}, out)
	}

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("auto-logout never fired")
	}

	out.mu.Lock()
	text := buf.String()
	out.mu.Unlock()
	assert.Contains(t, text, "\nsession for Mesa 01 expired, logged out\n> ")
}

func TestSyncWriterKeepsLinesWhole(t *testing.T) {
	var buf bytes.Buffer
	out := &syncWriter{w: &buf}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				fmt.Fprintf(out, "writer-%d line-%d\n", i, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 400)
	for _, line := range lines {
		assert.Regexp(t, `^writer-\d line-\d+$`, line)
	}
}
