// Выпуск access token оператора для API симулятора
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"staking_sim/internal/app"
	"staking_sim/pkg/token"
)

func main() {
	var operator, envFile string
	var ttl time.Duration
	flag.StringVar(&operator, "operator", "", "operator name, stored as token subject")
	flag.StringVar(&envFile, "env", ".env", "path to .env file")
	flag.DurationVar(&ttl, "ttl", 0, "token lifetime (default: ACCESS_TOKEN_DURATION)")
	flag.Parse()

	a := app.NewApp(app.Options{NoPersist: true})
	a.Init(envFile)
	cfg := a.ServiceProvider.JWTCfg()
	if !cfg.Enabled() {
		fmt.Fprintln(os.Stderr, "Error: ACCESS_TOKEN is not set")
		os.Exit(1)
	}
	if ttl <= 0 {
		ttl = cfg.AccessTokenDuration()
	}

	t, err := token.GenerateAccessToken(operator, cfg.AccessTokenSecretKey(), ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(t)
}
