// Command apiclient talks to the API from a terminal. Credentials are kept in
// an encrypted file between runs and refreshed transparently.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-auth-client/apiclient"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if apiclient.IsUnauthenticated(err) {
			fmt.Fprintln(os.Stderr, "Your session has ended. Run `apiclient signin` to sign in again.")
		}
		os.Exit(1)
	}
}
