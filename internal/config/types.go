package config

// Config is the top-level configuration carrier.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Trading  TradingConfig  `mapstructure:"trading"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Store    StoreConfig    `mapstructure:"store"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
	HTTPAddr string `mapstructure:"http_addr"`
}

type ExchangeConfig struct {
	Name               string `mapstructure:"name"`
	RESTBaseURL        string `mapstructure:"rest_base_url"`
	APIKey             string `mapstructure:"api_key"`
	APISecret          string `mapstructure:"api_secret"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds"`
	Symbol             string `mapstructure:"symbol"`
	BaseAsset          string `mapstructure:"base_asset"`
	QuoteAsset         string `mapstructure:"quote_asset"`
}

// StrategyConfig carries the market-making model parameters. The mm_* keys
// follow the Avellaneda-Stoikov formulation; rsi_* and the fixed
// take_profit/stop_loss percentages are diagnostic respectively legacy
// fallbacks and do not gate entries.
type StrategyConfig struct {
	Gamma             float64 `mapstructure:"mm_gamma"`
	ArrivalRate       float64 `mapstructure:"mm_a"`
	BookLiquidity     float64 `mapstructure:"mm_k"`
	TimeHorizonSec    float64 `mapstructure:"mm_time_horizon"`
	MinSpreadBps      float64 `mapstructure:"mm_min_spread_bps"`
	MaxInventoryRatio float64 `mapstructure:"mm_max_inventory_ratio"`
	OFIWeight         float64 `mapstructure:"mm_ofi_weight"`
	TradeRateSpike    float64 `mapstructure:"mm_trade_rate_spike"`
	SpreadWidenFactor float64 `mapstructure:"mm_spread_widen_factor"`

	RSIPeriod     int     `mapstructure:"rsi_period"`
	RSIOversold   float64 `mapstructure:"rsi_oversold"`
	RSIOverbought float64 `mapstructure:"rsi_overbought"`

	TakeProfitPercent float64 `mapstructure:"take_profit_percent"`
	StopLossPercent   float64 `mapstructure:"stop_loss_percent"`
}

type TradingConfig struct {
	TradeIntervalSeconds        float64 `mapstructure:"trade_interval_seconds"`
	StatusReportIntervalSeconds float64 `mapstructure:"status_report_interval_seconds"`
	CandleInterval              string  `mapstructure:"candle_interval"`
	CandleLimit                 int     `mapstructure:"candle_limit"`
	BookDepth                   int     `mapstructure:"book_depth"`
	TapeLimit                   int     `mapstructure:"tape_limit"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type StoreConfig struct {
	TradeLogPath string `mapstructure:"trade_log_path"`
}
