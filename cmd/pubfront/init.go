package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/eringen/pubfront/scaffold"
)

func runInit(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("generate session secret: %w", err)
	}

	name := filepath.Base(abs)
	data := scaffold.Data{
		ProjectName:   name,
		SiteName:      scaffold.ToTitle(name),
		SessionSecret: hex.EncodeToString(secret),
	}

	fmt.Printf("Writing pubfront starter files to %s\n\n", abs)
	created, err := scaffold.Write(abs, data)
	for _, path := range created {
		fmt.Printf("  created %s\n", path)
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Println("  cp .env.example .env")
	fmt.Println("  set API_URL in .env")
	fmt.Println("  pubfront serve")
	return nil
}
