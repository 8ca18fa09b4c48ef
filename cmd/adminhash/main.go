// Command adminhash prints an ADMIN_CREDENTIALS entry for an email and password.
//
//	adminhash -email admin@example.com -password 's3cret-pass'
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/example/apparel-storefront/internal/auth"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password (min 8 characters)")
	flag.Parse()

	if !strings.Contains(*email, "@") {
		fmt.Fprintln(os.Stderr, "adminhash: -email must be an email address")
		os.Exit(2)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminhash: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s=%s\n", strings.ToLower(strings.TrimSpace(*email)), hash)
}
