// Command createadmin provisions an admin account from the terminal, for the
// initial setup of a fresh deployment.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/regisync/regisync/internal/flagx"
	"github.com/regisync/regisync/internal/server/admins"
	"github.com/regisync/regisync/internal/server/config"
	"github.com/regisync/regisync/internal/server/shared/db"
)

func main() {

	fs := flag.NewFlagSet("createadmin", flag.ExitOnError)
	role := fs.String("role", admins.RoleAdmin, "role for the new admin account")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-role"}))

	cfg := config.LoadConfig()

	rm, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Enter admin username")

	username, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
	username = strings.TrimSpace(username)

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	service := admins.NewService(rm.Admins(), cfg)

	admin, err := service.Create(context.Background(), username, string(password), *role)
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	fmt.Printf("Admin %q created with role %q\n", admin.Username, admin.Role)
}
