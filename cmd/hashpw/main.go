package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/detoxsabeho/orders-backend/pkg/config"
	"github.com/detoxsabeho/orders-backend/pkg/security"
)

// hashpw mints the Argon2id hash expected in SABEHO_ADMIN_PASSWORD_HASH.
// Usage: hashpw <password>, or pipe the password on stdin.
func main() {
	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
			os.Exit(2)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		fmt.Fprintln(os.Stderr, "password must not be empty")
		os.Exit(2)
	}

	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    65536,
		ArgonTime:        3,
		ArgonParallelism: 2,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
