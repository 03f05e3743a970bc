package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/megumiii12/athlete/internal/api"
	"github.com/megumiii12/athlete/internal/auth"
	"github.com/megumiii12/athlete/internal/config"
	"github.com/megumiii12/athlete/internal/credentials"
	"github.com/megumiii12/athlete/internal/logger"
	"github.com/megumiii12/athlete/internal/models"
)

const usage = `Usage: athlete-auth <command>

Commands:
  login           Sign in and save credentials
  register        Create a new account
  reset-password  Reset an account password
  logout          Sign out and clear saved credentials
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "athlete-auth")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store := credentials.NewFileStore(cfg.Credentials.Path)
	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.Timeout)*time.Second, store, log)
	ctrl := auth.NewController(client, store, log)

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, ctrl, reader)
	case "register":
		err = runRegister(ctx, ctrl, reader)
	case "reset-password":
		err = runResetPassword(ctx, ctrl, reader)
	case "logout":
		err = ctrl.Logout(ctx)
		if err == nil {
			fmt.Println("Logged out.")
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func runLogin(ctx context.Context, ctrl *auth.Controller, reader *bufio.Reader) error {
	email := prompt(reader, "Email")
	password := prompt(reader, "Password")

	user, err := ctrl.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("Welcome back, %s! Run athlete-dashboard to start monitoring.\n", user.Username)
	return nil
}

func runRegister(ctx context.Context, ctrl *auth.Controller, reader *bufio.Reader) error {
	req := models.RegisterRequest{
		Username: prompt(reader, "Username"),
		Email:    prompt(reader, "Email"),
		Password: prompt(reader, "Password"),
		Gender:   prompt(reader, "Gender"),
	}

	ageText := prompt(reader, "Age")
	age, err := strconv.Atoi(ageText)
	if err != nil {
		return fmt.Errorf("invalid age %q", ageText)
	}
	req.Age = age

	if err := ctrl.Register(ctx, req); err != nil {
		return err
	}

	fmt.Println("Account created. Run athlete-auth login to sign in.")
	return nil
}

func runResetPassword(ctx context.Context, ctrl *auth.Controller, reader *bufio.Reader) error {
	email := prompt(reader, "Email")
	newPassword := prompt(reader, "New password")
	confirm := prompt(reader, "Confirm new password")

	if err := ctrl.ResetPassword(ctx, email, newPassword, confirm); err != nil {
		return err
	}

	fmt.Println("Password updated. Run athlete-auth login to sign in.")
	return nil
}
