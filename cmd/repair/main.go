package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Suscripciones-api/internal/application/provisioning"
	"github.com/jhoicas/Suscripciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Suscripciones-api/pkg/config"
	"github.com/jhoicas/Suscripciones-api/pkg/logger"
)

// Herramienta de reparación para el operador: reinvoca el saga de
// aprovisionamiento para un pago, o imprime el snapshot de diagnóstico.
//
//	repair -payment <id>              reinvoca el saga y muestra el outcome
//	repair -payment <id> -diagnostic  solo diagnóstico, sin escrituras
//	repair -enterprise <id>           diagnóstico del último pago pagado
func main() {
	paymentID := flag.String("payment", "", "id del pago a aprovisionar")
	enterpriseID := flag.String("enterprise", "", "id de la empresa a diagnosticar")
	diagOnly := flag.Bool("diagnostic", false, "solo diagnóstico (sin escrituras)")
	flag.Parse()

	if *paymentID == "" && *enterpriseID == "" {
		fmt.Fprintln(os.Stderr, "uso: repair -payment <id> [-diagnostic] | repair -enterprise <id>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn", Service: "repair"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	readRepos := postgres.ReadRepos(pool)
	resolver := provisioning.NewResolver(readRepos)
	diagnostic := provisioning.NewDiagnostic(readRepos, resolver)

	var result any
	switch {
	case *enterpriseID != "":
		result, err = diagnostic.ByEnterprise(ctx, *enterpriseID)
	case *diagOnly:
		result, err = diagnostic.ByPayment(ctx, *paymentID)
	default:
		orchestrator := provisioning.NewOrchestrator(
			postgres.NewTxRunner(pool),
			readRepos.Payments,
			resolver,
			provisioning.NewInvoiceStep(cfg.Billing.InvoicePrefix, cfg.Billing.NumberAttempts),
			provisioning.NewSubscriptionStep(),
			provisioning.NewMemberSpaceStep(),
			provisioning.NewRoleStep(),
			log.Zerolog(),
		)
		result, err = orchestrator.Provision(ctx, *paymentID)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("operación fallida")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("serializar resultado")
	}
	fmt.Println(string(out))
}
