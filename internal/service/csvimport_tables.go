package service

import "github.com/koonliang/stocktracker/internal/model"

// Static lookup tables for the CSV import pipeline. These are read-only
// configuration loaded once at process start; nothing mutates them.

// fieldAliases maps each standard ledger field to the header synonyms seen
// across brokerage CSV exports. Headers are matched after lowercasing and
// trimming.
var fieldAliases = map[string][]string{
	"type":            {"action", "type", "transaction type", "trade type", "buy/sell", "side", "order type", "transaction"},
	"symbol":          {"symbol", "ticker", "stock", "security", "instrument", "stock symbol", "ticker symbol", "code"},
	"exchange":        {"exchange", "listing exchange", "market", "listingexchange", "stock exchange"},
	"transactionDate": {"date", "trade date", "transaction date", "settlement date", "exec date", "execution date", "activity date", "tradedate"},
	"shares":          {"shares", "quantity", "qty", "units", "amount", "volume", "share quantity"},
	"pricePerShare":   {"price", "share price", "unit price", "execution price", "trade price", "cost per share", "price per share", "t. price"},
	"notes":           {"notes", "memo", "description", "comment", "remarks"},
}

// requiredImportFields must all be mapped before any row is processed.
// "type" is not required; direction falls back to the sign of the shares
// column, which is how IBKR exports encode it.
var requiredImportFields = []string{"symbol", "transactionDate", "shares", "pricePerShare"}

// exchangeSuffixes maps brokerage exchange codes to Yahoo Finance ticker
// suffixes. US exchanges map to the empty string; their symbols need no
// suffix.
var exchangeSuffixes = map[string]string{
	// London Stock Exchange
	"LSE":    ".L",
	"LSEETF": ".L",
	"LON":    ".L",
	// Hong Kong Stock Exchange
	"SEHK": ".HK",
	"HKG":  ".HK",
	// Toronto Stock Exchange
	"TSE": ".TO",
	"TSX": ".TO",
	// Australian Securities Exchange
	"ASX": ".AX",
	// Deutsche Boerse
	"XETRA": ".DE",
	"FRA":   ".F",
	// Euronext Paris
	"EPA": ".PA",
	// Swiss Exchange
	"SIX": ".SW",
	// Amsterdam
	"AMS": ".AS",
	// Brussels
	"EBR": ".BR",
	// Milan
	"MIL": ".MI",
	// Madrid
	"MCE": ".MC",
	// Copenhagen
	"CSE": ".CO",
	// Stockholm
	"STO": ".ST",
	// Oslo
	"OSE": ".OL",
	// Singapore
	"SGX": ".SI",
	// Tokyo
	"TYO": ".T",
	// No suffix needed for US exchanges
	"NASDAQ": "",
	"NYSE":   "",
	"AMEX":   "",
	"ARCA":   "",
}

// typeSynonyms maps the direction words brokerages use to a transaction
// type. Matched after lowercasing and trimming.
var typeSynonyms = map[string]model.TransactionType{
	"buy":        model.TransactionTypeBuy,
	"b":          model.TransactionTypeBuy,
	"purchase":   model.TransactionTypeBuy,
	"bought":     model.TransactionTypeBuy,
	"you bought": model.TransactionTypeBuy,
	"bot":        model.TransactionTypeBuy,
	"sell":       model.TransactionTypeSell,
	"s":          model.TransactionTypeSell,
	"sale":       model.TransactionTypeSell,
	"sold":       model.TransactionTypeSell,
	"you sold":   model.TransactionTypeSell,
	"sld":        model.TransactionTypeSell,
}

// dateLayouts are the accepted transaction date formats, tried in order.
// Go's parser tolerates unpadded day and month digits, so the padded and
// unpadded US layouts collapse into fewer entries than the source formats
// they cover.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"2-Jan-2006",
	"20060102",
	"1/2/06",
	"01/02/06",
}
