// Command kiosk runs the table-side login flow in a terminal: the identity of the
// device is kept in a local file and table sessions log themselves out.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/allblack/restaurant-app/auth"
	"github.com/allblack/restaurant-app/config"
	"github.com/allblack/restaurant-app/repository"
	"github.com/allblack/restaurant-app/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const usage = `commands:
  table <name>                                   log in as a table
  qr <payload>                                   log in with a scanned code
  slug <slug>                                    log in with a table slug
  staff <user> <password>                        employee login
  admin <user> <password>                        admin login
  register <user> <phone> <password> <admin> <admin-password>
  whoami | logout | help | quit`

func main() {
	utils.InitLogger()
	utils.InfoLogger.SetOutput(os.Stderr)
	utils.InfoLogger.SetLevel(logrus.WarnLevel)

	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	// the prompt owns stdout, so LOG_LEVEL is not applied here
	if err := utils.ConfigureLogger("", cfg.LogFormat); err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	// the auto-logout hook prints from the timer goroutine
	out := &syncWriter{w: os.Stdout}
	manager := auth.NewManager(
		repository.NewAccountRepository(db),
		repository.NewSessionRepository(db),
		auth.NewFileIdentityStore(cfg.IdentityFile),
		auth.WithAutoLogoutAfter(cfg.AutoLogoutAfter),
		auth.WithAutoLogoutHook(func(identity auth.Identity) {
			fmt.Fprintf(out, "\nsession for %s expired, logged out\n> ", identity.Username)
		}),
	)

	if identity, ok := manager.Restore(); ok {
		fmt.Fprintf(out, "welcome back, %s\n", identity.Username)
	}

	run(context.Background(), manager, os.Stdin, out)
}

// syncWriter serializes writes so the prompt loop and the auto-logout hook do
// not interleave their output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func run(ctx context.Context, manager *auth.Manager, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, usage)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		if !execute(ctx, manager, strings.Fields(scanner.Text()), out) {
			return
		}
	}
}

// execute runs one command line and reports whether the loop should continue.
func execute(ctx context.Context, manager *auth.Manager, args []string, out io.Writer) bool {
	if len(args) == 0 {
		return true
	}

	var err error
	switch cmd, rest := args[0], args[1:]; {
	case cmd == "quit" || cmd == "exit":
		return false
	case cmd == "help":
		fmt.Fprintln(out, usage)
		return true
	case cmd == "whoami":
		if identity, ok := manager.Current(); ok {
			fmt.Fprintf(out, "%s (%s)\n", identity.Username, identity.Role())
		} else {
			fmt.Fprintln(out, "not logged in")
		}
		return true
	case cmd == "logout":
		manager.Logout()
		fmt.Fprintln(out, "logged out")
		return true
	case cmd == "table" && len(rest) >= 1:
		_, err = manager.Login(ctx, auth.LoginRequest{Username: strings.Join(rest, " ")})
	case cmd == "qr" && len(rest) >= 1:
		_, err = manager.LoginWithQR(ctx, strings.Join(rest, " "))
	case cmd == "slug" && len(rest) == 1:
		_, err = manager.LoginBySlug(ctx, rest[0], false)
	case cmd == "staff" && len(rest) == 2:
		_, err = manager.Login(ctx, auth.LoginRequest{Username: rest[0], Password: rest[1], Employee: true})
	case cmd == "admin" && len(rest) == 2:
		_, err = manager.Login(ctx, auth.LoginRequest{Username: rest[0], Password: rest[1]})
	case cmd == "register" && len(rest) == 5:
		_, err = manager.Register(ctx, auth.RegisterRequest{
			Username:      rest[0],
			Phone:         rest[1],
			Password:      rest[2],
			AdminUsername: rest[3],
			AdminPassword: rest[4],
		})
	default:
		fmt.Fprintln(out, "unknown command, try help")
		return true
	}

	if err != nil {
		fmt.Fprintln(out, auth.PublicMessage(err))
		return true
	}
	fmt.Fprintln(out, "ok")
	return true
}
