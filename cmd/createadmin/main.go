// createadmin создаёт учётную запись администратора напрямую в базе.
// Через HTTP регистрация администратора недоступна.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valkyria/equestrian-club/config"
	"github.com/valkyria/equestrian-club/db"
	"github.com/valkyria/equestrian-club/repositories"
	"github.com/valkyria/equestrian-club/services"
)

func main() {
	username := flag.String("username", "", "admin login")
	fullName := flag.String("fullname", "", "admin full name")
	flag.Parse()

	if *username == "" || *fullName == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -username <login> -fullname <name>")
		os.Exit(2)
	}

	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read password: %v\n", err)
		os.Exit(1)
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		fmt.Fprintln(os.Stderr, "password must not be empty")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	authService := services.NewAuthService(userRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := authService.CreateAdmin(ctx, *username, *fullName, password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			fmt.Fprintln(os.Stderr, "a user with this login already exists")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "failed to create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin %q created (id=%d)\n", user.Username, user.ID)
}
