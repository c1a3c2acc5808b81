package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/middleware"
	"github.com/tndevelopers2024/medagg-crm-sub002/pkg/utils"
)

var errNoUser = errors.New("-user is required")

func main() {
	user := flag.String("user", "", "user id carried in the token")
	roles := flag.String("roles", middleware.RoleAdmin, "comma-separated roles")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	utils.SetSecret(cfg.JWTSecret)

	token, err := mint(*user, *roles, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}

// mint signs an operator token for calling the ingest endpoints.
func mint(user, roles string, ttl time.Duration) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return "", errNoUser
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	var list []string
	for _, r := range strings.Split(roles, ",") {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if r != middleware.RoleAdmin && r != middleware.RoleManager {
			return "", fmt.Errorf("unknown role %q", r)
		}
		list = append(list, r)
	}
	return utils.GenerateToken(user, list, ttl)
}
