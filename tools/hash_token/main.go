package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
)

func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Prints the value to put in PREDICTOR_ADMIN_TOKEN_HASH for a chosen admin token.
func main() {
	token := flag.String("token", "", "admin token to hash")
	flag.Parse()
	if *token == "" {
		log.Fatal("usage: hash_token -token <admin token>")
	}
	fmt.Println("Hash:", hashToken(*token))
}
