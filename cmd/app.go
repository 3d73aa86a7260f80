package cmd

import (
	"context"
	"strings"

	"github.com/fatih/color"

	"intents-swap/config"
	"intents-swap/pkg/catalog"
	"intents-swap/pkg/deposit"
	"intents-swap/pkg/logger"
	"intents-swap/pkg/oneclick"
	"intents-swap/pkg/swap"
	"intents-swap/pkg/wallet"
)

// app wires the client, catalog, wallet session and lifecycle controller
// for one command invocation.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	client     *oneclick.Client
	catalog    *catalog.Catalog
	connector  *wallet.EnvConnector
	session    *wallet.Session
	controller *swap.Controller
}

// newApp loads configuration and builds the controller. fallbackAddr is used
// for quoting when no wallet identity is configured.
func newApp(ctx context.Context, fallbackAddr string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return nil, err
	}

	client := oneclick.New(cfg.BaseURL, cfg.JWTToken)
	cat := catalog.Load(ctx, client, log)

	connector, err := wallet.NewEnvConnector(cfg.Wallet)
	if err != nil {
		return nil, err
	}
	session := wallet.NewSession(connector)
	// Sign in right away when identities are configured
	connector.Restore()

	controller := swap.NewController(client, session, cat, deposit.NewManager(cfg.AutoDeposit), log, swap.Options{
		SlippageBps:     cfg.SlippageBps,
		DeadlineWindow:  cfg.DeadlineWindow(),
		PollInterval:    cfg.PollInterval(),
		FallbackAddress: fallbackAddr,
	})

	return &app{
		cfg:        cfg,
		log:        log,
		client:     client,
		catalog:    cat,
		connector:  connector,
		session:    session,
		controller: controller,
	}, nil
}

// Close tears the app down: stops any poll and releases the connector
func (a *app) Close() {
	a.controller.Close()
	_ = a.session.Close()
}

// applySelection pushes the non-empty flag values into the controller;
// everything left empty keeps its catalog default.
func (a *app) applySelection(fromChain, fromToken, toChain, toToken, amountStr string) {
	if fromChain != "" {
		a.controller.SetFromChain(fromChain)
	}
	if toChain != "" {
		a.controller.SetToChain(toChain)
	}
	if fromToken != "" {
		a.controller.SetFromToken(resolveTokenKey(a.catalog, a.controller.Selection().FromChain, fromToken))
	}
	if toToken != "" {
		a.controller.SetToToken(resolveTokenKey(a.catalog, a.controller.Selection().ToChain, toToken))
	}
	if amountStr != "" {
		a.controller.SetAmount(amountStr)
	}
}

// resolveTokenKey accepts either a token identity key or a symbol and
// returns the identity key.
func resolveTokenKey(cat *catalog.Catalog, chain, value string) string {
	if _, ok := cat.Find(chain, value); ok {
		return value
	}
	for _, t := range cat.TokensFor(chain) {
		if strings.EqualFold(t.Symbol, value) {
			return t.Key()
		}
	}
	return value
}

// destDecimals returns the decimals of the selected destination token,
// falling back to 0 when it cannot be resolved
func (a *app) destDecimals() int {
	sel := a.controller.Selection()
	if t, ok := a.catalog.Find(sel.ToChain, sel.ToToken); ok {
		return t.Decimals
	}
	return 0
}

func getColoredStatus(status string) string {
	status = strings.ToUpper(status)

	switch status {
	case "SUCCESS":
		return color.GreenString(status)
	case "PENDING_DEPOSIT", "PROCESSING":
		return color.YellowString(status)
	case "FAILED", "REFUNDED":
		return color.RedString(status)
	default:
		return status
	}
}
