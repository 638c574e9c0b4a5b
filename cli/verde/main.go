package main

import (
	"os"

	"github.com/joho/godotenv"

	verdecmder "github.com/papercomputeco/verde/cmd/verde"
)

func main() {
	// A missing .env file is fine; VERDE_* variables may come from the shell.
	_ = godotenv.Load()

	cmd := verdecmder.NewVerdeCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
