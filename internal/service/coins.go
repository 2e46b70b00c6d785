package service

import (
	"context"

	"go.uber.org/zap"

	"signaltracker/internal/extract"
	"signaltracker/internal/models"
	"signaltracker/internal/price"
	"signaltracker/internal/repository"
)

// CoinCatalog keeps the known-symbol table flowing from the coins table
// into the extractor and the CoinGecko id resolver.
type CoinCatalog struct {
	Repo      repository.Repository
	Extractor *extract.Extractor
	Gecko     *price.CoinGecko
	Logger    *zap.Logger
}

// Seed upserts the default coin set so a fresh database can resolve the
// common tickers immediately.
func (c *CoinCatalog) Seed(ctx context.Context) error {
	if c == nil || c.Repo == nil {
		return nil
	}
	for _, coin := range DefaultCoins() {
		item := coin
		if err := c.Repo.UpsertCoin(ctx, &item); err != nil {
			return err
		}
	}
	return nil
}

// Refresh reloads the catalog and pushes it to the consumers.
func (c *CoinCatalog) Refresh(ctx context.Context) error {
	if c == nil || c.Repo == nil {
		return nil
	}
	coins, err := c.Repo.ListCoins(ctx)
	if err != nil {
		return err
	}
	symbols := make([]string, 0, len(coins))
	ids := make(map[string]string, len(coins))
	for _, coin := range coins {
		symbols = append(symbols, coin.Symbol)
		ids[coin.Symbol] = coin.CoingeckoID
	}
	if c.Extractor != nil {
		c.Extractor.SetKnownSymbols(symbols)
	}
	if c.Gecko != nil {
		c.Gecko.SetIDs(ids)
	}
	if c.Logger != nil {
		c.Logger.Debug("coin catalog refreshed", zap.Int("coins", len(coins)))
	}
	return nil
}

func DefaultCoins() []models.Coin {
	return []models.Coin{
		{Symbol: "BTC", Name: "Bitcoin", CoingeckoID: "bitcoin"},
		{Symbol: "ETH", Name: "Ethereum", CoingeckoID: "ethereum"},
		{Symbol: "BNB", Name: "BNB", CoingeckoID: "binancecoin"},
		{Symbol: "SOL", Name: "Solana", CoingeckoID: "solana"},
		{Symbol: "XRP", Name: "XRP", CoingeckoID: "ripple"},
		{Symbol: "ADA", Name: "Cardano", CoingeckoID: "cardano"},
		{Symbol: "DOGE", Name: "Dogecoin", CoingeckoID: "dogecoin"},
		{Symbol: "DOT", Name: "Polkadot", CoingeckoID: "polkadot"},
		{Symbol: "AVAX", Name: "Avalanche", CoingeckoID: "avalanche-2"},
		{Symbol: "MATIC", Name: "Polygon", CoingeckoID: "matic-network"},
		{Symbol: "LINK", Name: "Chainlink", CoingeckoID: "chainlink"},
		{Symbol: "UNI", Name: "Uniswap", CoingeckoID: "uniswap"},
		{Symbol: "ATOM", Name: "Cosmos", CoingeckoID: "cosmos"},
		{Symbol: "LTC", Name: "Litecoin", CoingeckoID: "litecoin"},
		{Symbol: "NEAR", Name: "NEAR Protocol", CoingeckoID: "near"},
		{Symbol: "APT", Name: "Aptos", CoingeckoID: "aptos"},
		{Symbol: "ARB", Name: "Arbitrum", CoingeckoID: "arbitrum"},
		{Symbol: "OP", Name: "Optimism", CoingeckoID: "optimism"},
		{Symbol: "PEPE", Name: "Pepe", CoingeckoID: "pepe"},
		{Symbol: "SHIB", Name: "Shiba Inu", CoingeckoID: "shiba-inu"},
	}
}
