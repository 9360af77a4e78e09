// Package main provides a one-shot CLI: quote a swap against live
// chain reserves and print the amounts and slippage bounds.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/joho/godotenv"

	"amm-settlement-lab/internal/chain"
	"amm-settlement-lab/internal/domain"
	"amm-settlement-lab/internal/quote"
	"amm-settlement-lab/internal/registry"
	"amm-settlement-lab/internal/reserve"
	"amm-settlement-lab/internal/slippage"
	"amm-settlement-lab/internal/units"
)

func main() {
	godotenv.Load()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("CHAIN_RPC_ENDPOINT"), "Chain JSON-RPC HTTP endpoint")
	registryPath := flag.String("registry", os.Getenv("REGISTRY_PATH"), "Token/pool registry JSON file")
	from := flag.String("from", "", "Input token symbol")
	to := flag.String("to", "", "Output token symbol")
	amount := flag.String("amount", "", "Display amount of the fixed side")
	direction := flag.String("direction", "input", "Which side is fixed: input or output")
	slippageBps := flag.Uint("slippage-bps", 100, "Slippage tolerance in basis points")
	timeout := flag.Duration("timeout", 15*time.Second, "Overall deadline")
	flag.Parse()

	logger := log.New(os.Stderr, "[quote] ", log.LstdFlags)

	if *rpcEndpoint == "" || *registryPath == "" {
		logger.Fatal("--rpc-endpoint and --registry are required")
	}
	if *from == "" || *to == "" || *amount == "" {
		logger.Fatal("--from, --to and --amount are required")
	}
	if *slippageBps >= 10000 {
		logger.Fatal("--slippage-bps must be below 10000")
	}

	reg, err := registry.LoadFile(*registryPath)
	if err != nil {
		logger.Fatalf("Load registry: %v", err)
	}
	store := registry.NewStore(reg)

	tokenIn, ok := reg.Token(*from)
	if !ok {
		logger.Fatalf("Unknown token %s", *from)
	}
	tokenOut, ok := reg.Token(*to)
	if !ok {
		logger.Fatalf("Unknown token %s", *to)
	}

	display, err := units.ParseDisplayAmount(*amount)
	if err != nil {
		logger.Fatalf("Invalid amount %q: %v", *amount, err)
	}

	client := chain.NewHTTPClient(*rpcEndpoint)
	provider := reserve.NewProvider(client, store)
	svc := quote.NewService(provider, store)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var q *domain.Quote
	var fixedBase *big.Int
	switch *direction {
	case "input":
		fixedBase, err = units.ToBaseUnits(display, tokenIn)
		if err != nil {
			logger.Fatalf("Convert amount: %v", err)
		}
		q, err = svc.QuoteExactInput(ctx, *from, *to, fixedBase)
	case "output":
		fixedBase, err = units.ToBaseUnits(display, tokenOut)
		if err != nil {
			logger.Fatalf("Convert amount: %v", err)
		}
		q, err = svc.QuoteExactOutput(ctx, *from, *to, fixedBase)
	default:
		logger.Fatal("--direction must be input or output")
	}
	if err != nil {
		logger.Fatalf("Quote: %v", err)
	}
	if q.InsufficientLiquidity {
		logger.Fatal("Insufficient liquidity for requested amount")
	}

	impact, err := slippage.PriceImpact(q)
	if err != nil {
		logger.Fatalf("Price impact: %v", err)
	}

	fmt.Printf("Route:        %s\n", routeLabel(q))
	fmt.Printf("Input:        %s %s (%s base)\n",
		units.ToDisplayUnits(q.Input, tokenIn), tokenIn.Symbol, units.FormatBaseUnits(q.Input))
	fmt.Printf("Output:       %s %s (%s base)\n",
		units.ToDisplayUnits(q.Output, tokenOut), tokenOut.Symbol, units.FormatBaseUnits(q.Output))
	fmt.Printf("Fee:          %s %s\n", slippage.TradeFeeDisplay(q, tokenIn), tokenIn.Symbol)
	fmt.Printf("Price impact: %s%%\n", impact.Round(4))

	switch *direction {
	case "input":
		min, err := slippage.MinimumReceived(q.Output, uint32(*slippageBps))
		if err != nil {
			logger.Fatalf("Minimum received: %v", err)
		}
		fmt.Printf("Min received: %s %s (%s base, %d bps)\n",
			units.ToDisplayUnits(min, tokenOut), tokenOut.Symbol, units.FormatBaseUnits(min), *slippageBps)
	case "output":
		max, err := slippage.MaximumInput(q.Input, uint32(*slippageBps))
		if err != nil {
			logger.Fatalf("Maximum input: %v", err)
		}
		fmt.Printf("Max input:    %s %s (%s base, %d bps)\n",
			units.ToDisplayUnits(max, tokenIn), tokenIn.Symbol, units.FormatBaseUnits(max), *slippageBps)
	}

	for i, leg := range q.Legs {
		fmt.Printf("Leg %d:        %s -> %s, in %s, out %s, fee %s\n",
			i+1, leg.AssetIn, leg.AssetOut,
			units.FormatBaseUnits(leg.Input), units.FormatBaseUnits(leg.Output), units.FormatBaseUnits(leg.Fee))
	}
}

func routeLabel(q *domain.Quote) string {
	if q.Route.Kind == domain.RouteHop {
		return fmt.Sprintf("hop via %s", q.Route.Hub)
	}
	return "direct"
}
