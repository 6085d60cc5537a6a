package main

import (
	"flag"
	"fmt"

	"github.com/rs/xid"

	"github.com/rmacedo/guild-console/pkg/authgate"
)

// genpass mints a random access password and prints a ready-to-run INSERT for
// the chosen role table, for seeding the gate before the console has any
// passwords at all.
func main() {
	length := flag.Int("length", 12, "Length of the password in bytes (hex encoded, so output is 2x this)")
	role := flag.String("role", "admin", "Role table to target: superuser, admin or regular")
	flag.Parse()

	table := ""
	switch *role {
	case "superuser":
		table = "super_users"
	case "admin":
		table = "admins"
	case "regular":
		table = "regular_users"
	default:
		fmt.Printf("Unknown role %q (want superuser, admin or regular)\n", *role)
		return
	}

	password, err := authgate.RandomHex(*length)
	if err != nil {
		fmt.Printf("Error generating password: %v\n", err)
		return
	}

	fmt.Printf("Password: %s\n", password)
	fmt.Printf("Seed SQL:\n")
	fmt.Printf("  INSERT INTO %s (id, password, created_at) VALUES ('%s', '%s', now());\n",
		table, xid.New().String(), password)
}
