package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	position_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	direction TEXT NOT NULL,
	units REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	macd_difference REAL,
	rsi REAL,
	slope_10 REAL,
	slope_25 REAL,
	slope_50 REAL,
	estrangement_10 REAL,
	estrangement_25 REAL,
	estrangement_50 REAL,
	profit_or_loss REAL NOT NULL,
	entered_at DATETIME NOT NULL,
	exited_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_exited_at ON trades(exited_at);
`

var tradeColumns = []string{
	"id", "position_id", "instrument", "direction", "units", "entry_price", "exit_price",
	"macd_difference", "rsi", "slope_10", "slope_25", "slope_50",
	"estrangement_10", "estrangement_25", "estrangement_50",
	"profit_or_loss", "entered_at", "exited_at",
}
