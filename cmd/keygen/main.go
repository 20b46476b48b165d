// Command keygen prints a fresh 32-byte encryption key as hex, suitable for
// the ENC_KEY environment variable.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

func main() {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
	fmt.Println(hex.EncodeToString(key))
}
