//go:build ignore

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/decktutor/combo-backend/config"
	"github.com/decktutor/combo-backend/services"
	"github.com/decktutor/combo-backend/shared"
)

func main() {
	fmt.Printf("🏥 Combo Backend Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	ctx := context.Background()
	healthScore := 0
	totalTests := 3

	cfg := config.LoadConfig()
	providerConfig := shared.NewEDHRECServiceConfig()
	if cfg.EDHRECBaseURL != "" {
		providerConfig.BaseURL = cfg.EDHRECBaseURL
	}
	edhrec := services.NewEDHRECComboService(providerConfig)

	// Test 1: EDHREC API reachability
	fmt.Print("📡 EDHREC API: ")
	if err := edhrec.Ping(ctx); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Println("✅ OK")
		healthScore++
	}

	// Test 2: Combo lookup for a staple card
	fmt.Print("🃏 Combo Lookup: ")
	if records, err := edhrec.GetCardCombos(ctx, "Thassa's Oracle"); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (%d combos)\n", len(records))
		healthScore++
	}

	// Test 3: Matcher smoke test through the cache
	fmt.Print("🔍 Deck Matcher: ")
	cache := services.NewMemoryComboCache(cfg.GetCacheTTL(), cfg.GetCacheMaxSize())
	matcher := services.NewComboMatcherService(services.NewCachedComboProvider(edhrec, cache))
	complete, potential := matcher.FindCombos(ctx, []string{"Thassa's Oracle", "Demonic Consultation"})
	fmt.Printf("✅ OK (%d complete, %d potential)\n", len(complete), len(potential))
	healthScore++

	// Overall health
	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}

	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))
}
