package app

import (
	"github.com/yungbote/vizboard-backend/internal/pkg/envutil"
)

type Config struct {
	Address        string
	MockOllama     bool
	ChartRulesPath string
}

func LoadConfig() Config {
	return Config{
		Address:        envutil.String("HTTP_ADDR", ":8080"),
		MockOllama:     envutil.Bool("MOCK_OLLAMA", false),
		ChartRulesPath: envutil.String("CHARTS_RULES_PATH", ""),
	}
}
