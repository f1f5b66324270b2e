package universe

// Curated symbol lists for market-wide discovery. These stand in for a
// screener API; membership changes slowly and is updated by hand.

// sp500Top100 holds the most liquid S&P 500 names. The full index is too
// slow to sweep in a pre-market window.
var sp500Top100 = []string{
	// Mega cap tech
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA", "AVGO", "ORCL",

	// Large cap tech
	"ADBE", "CRM", "CSCO", "ACN", "AMD", "INTC", "QCOM", "TXN", "INTU", "AMAT",
	"SNOW", "NOW", "PANW", "PLTR", "UBER", "ABNB",

	// Communication
	"NFLX", "DIS", "CMCSA", "TMUS", "VZ", "T",

	// Finance
	"BRK.B", "JPM", "V", "MA", "BAC", "WFC", "MS", "GS", "SCHW", "AXP", "C", "USB",
	"PNC", "COF", "BLK", "SPGI",

	// Healthcare
	"UNH", "JNJ", "LLY", "ABBV", "MRK", "TMO", "ABT", "DHR", "PFE", "BMY", "AMGN",
	"GILD", "CVS", "CI", "ISRG", "REGN", "VRTX", "ZTS", "MRNA", "BSX",

	// Consumer
	"COST", "WMT", "HD", "MCD", "NKE", "SBUX", "TGT", "LOW", "TJX", "BKNG",

	// Industrial
	"CAT", "BA", "UNP", "HON", "UPS", "RTX", "DE", "LMT", "GE", "MMM",

	// Energy
	"XOM", "CVX", "COP", "EOG", "SLB", "MPC", "PSX", "VLO",

	// Materials
	"LIN", "APD", "SHW", "FCX", "NEM",

	// Real estate
	"PLD", "AMT", "CCI", "EQIX", "SPG",
}

var sp500Next100 = []string{
	"EMR", "ITW", "NSC", "CSX", "FDX", "WM", "ETN", "PH", "CMI", "CARR",
	"PM", "MO", "EL", "CL", "KMB", "GIS", "K", "HSY", "SYY", "TSN",
	"ELV", "HUM", "HCA", "MCK", "CNC", "CAH", "BIIB", "ILMN", "IDXX", "A",
	"SYK", "EW", "BDX", "RMD", "ALGN", "DXCM", "ZBH", "BAX", "HOLX", "PODD",
	"CME", "ICE", "MCO", "MMC", "AON", "TRV", "PGR", "ALL", "CB", "AIG",
	"MET", "PRU", "AFL", "AMP", "TROW", "BEN", "IVZ", "NTRS",
	"ANET", "NDAQ", "KEYS", "FTV", "TYL", "EPAM", "WDC", "STX", "HPQ", "NTAP",
	"NEE", "DUK", "SO", "D", "AEP", "SRE", "PCG", "ED", "EXC", "XEL",
	"ECL", "DOW", "DD", "PPG", "NUE", "VMC", "MLM", "ALB", "BALL", "PKG",
	"WELL", "PSA", "DLR", "O", "AVB", "EQR", "VTR", "ESS", "MAA", "ARE",
}

var nasdaq100 = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA", "AVGO", "COST",
	"NFLX", "ADBE", "CSCO", "PEP", "TMUS", "AMD", "INTC", "QCOM", "CMCSA", "TXN",
	"INTU", "AMGN", "HON", "SBUX", "AMAT", "ISRG", "BKNG", "MDLZ", "GILD", "ADP",
	"VRTX", "REGN", "ADI", "LRCX", "PANW", "MU", "KLAC", "SNPS", "CDNS", "MELI",
	"ABNB", "MRNA", "ASML", "ORLY", "CSX", "NXPI", "CTAS", "FTNT", "DASH", "WDAY",
	"MAR", "PYPL", "CHTR", "PCAR", "CPRT", "MRVL", "MNST", "CRWD", "PAYX", "DXCM",
	"ODFL", "EA", "IDXX", "LULU", "KDP", "CSGP", "BIIB", "ON", "DDOG", "TTD",
	"ZS", "FAST", "VRSK", "EXC", "CTSH", "TEAM", "ROST", "GEHC", "BKR",
	"KHC", "XEL", "FANG", "AEP", "MCHP", "CEG", "DLTR", "WBD", "ENPH", "CCEP",
	"CDW", "ARM", "GFS", "ILMN", "ZM", "WBA", "SMCI", "TTWO", "MDB", "EBAY",
}

// retailFavorites are high-volume meme and retail-driven names.
var retailFavorites = []string{
	"GME", "AMC", "BBBY", "BB", "PLTR", "SOFI", "RIVN", "LCID", "NIO",
	"CLOV", "SPCE", "HOOD", "COIN", "RBLX", "SHOP", "SQ", "ROKU", "SNAP", "PINS",
}

// chineseADRs often gap on overnight news out of Asia.
var chineseADRs = []string{
	"BABA", "JD", "PDD", "BIDU", "NIO", "XPEV", "LI", "BILI", "TME", "IQ",
}

// biotechMovers gap hard on FDA and clinical readouts.
var biotechMovers = []string{
	"MRNA", "BNTX", "REGN", "VRTX", "GILD", "BIIB", "SGEN", "ALNY", "EXEL", "BMRN",
	"SRPT", "TECH", "IONS", "NBIX", "JAZZ", "INCY", "RGEN", "UTHR",
}

var semiconductor = []string{
	"NVDA", "AMD", "INTC", "AVGO", "QCOM", "TXN", "AMAT", "LRCX", "KLAC", "ASML",
	"MU", "MRVL", "ADI", "NXPI", "MCHP", "ON", "SWKS", "QRVO",
}

var evAuto = []string{
	"TSLA", "RIVN", "LCID", "NIO", "XPEV", "LI", "F", "GM", "STLA",
}

var cryptoExposed = []string{
	"COIN", "MSTR", "RIOT", "MARA", "CLSK", "HUT", "HOOD",
}

var defense = []string{
	"LMT", "RTX", "BA", "NOC", "GD", "LHX", "HWM", "TDG", "LDOS",
}

var recentIPOs = []string{
	"ARM", "BIRK", "RDDT", "FYBR", "KVUE", "CART", "IONQ", "VRT", "KROS", "BNED",
	"SOUN", "INST", "RXRX", "FOUR", "BROS", "CAVA", "LYFT", "DASH", "SNOW", "RBLX",
	"HOOD", "COIN", "RIVN", "LCID", "NU", "SOFI", "OPEN", "UPST", "AFRM", "GTLB",
}

var highShortInterest = []string{
	"GME", "AMC", "BBBY", "BYND", "RIOT", "MARA", "CLOV", "ROOT",
	"GOEV", "RIDE", "WKHS", "TLRY", "SNDL", "MVIS", "CTRM", "OCGN", "EXPR",
}

var etfs = []string{
	// Index
	"SPY", "QQQ", "IWM", "DIA", "VTI", "VOO", "RSP",

	// Leveraged bull
	"TQQQ", "SOXL", "UPRO", "SPXL", "TECL", "FNGU", "BULZ", "WEBL",

	// Leveraged bear
	"SQQQ", "SOXS", "SPXS", "SDOW", "UVXY", "VXX",

	// Sector
	"XLF", "XLE", "XLK", "XLV", "XLI", "XLP", "XLY", "XLB", "XLU", "XLRE",
	"SMH", "IBB", "XBI", "KRE", "XRT", "XME", "XOP", "ITB", "GDX", "GDXJ",

	// Thematic
	"ARKK", "ARKF", "ARKG", "ARKW", "ARKQ", "TAN", "ICLN", "LIT", "JETS", "DRIV",
}

var russell2000Liquid = []string{
	"IWM", "MARA", "RIOT", "SIRI", "PLUG", "F", "SOFI", "AAL", "UAL", "CCL",
	"NCLH", "RCL", "SAVE", "JBLU", "DAL", "LUV", "ALK", "HA", "MESA", "SKYW",
	"BLNK", "CHPT", "EVGO", "QS", "ARVL", "FFIE", "MULN", "ELMS", "LEV", "FSR",
	"RIG", "HP", "BTU", "ARCH", "CEIX", "HCC", "METC", "HNRG", "WTI", "TALO",
}

var cloudSaaS = []string{
	"CRM", "NOW", "SNOW", "DDOG", "CRWD", "ZS", "NET", "OKTA", "ESTC", "DOCU",
	"TWLO", "MDB", "TEAM", "HUBS", "ZM", "SHOP", "WDAY", "VEEV", "ZI", "BILL",
}

var fintech = []string{
	"SQ", "PYPL", "COIN", "HOOD", "SOFI", "AFRM", "UPST", "LC", "NU", "OPEN",
	"ALLY", "GS", "MS", "SCHW", "IBKR", "MKTX", "TW", "VIRT",
}

var gaming = []string{
	"EA", "TTWO", "ATVI", "RBLX", "U", "DIS", "NFLX", "SPOT", "WBD", "PARA",
	"LYV", "MSG", "MSGS", "DKNG", "PENN", "MGM", "WYNN", "LVS", "CZR",
}

var ecommerce = []string{
	"AMZN", "SHOP", "MELI", "SE", "BABA", "JD", "PDD", "ETSY", "W", "CHWY",
	"CVNA", "CPNG", "ABNB", "BKNG", "EXPE", "TRIP", "UBER", "LYFT", "DASH",
}

var energyExtended = []string{
	"XOM", "CVX", "COP", "EOG", "SLB", "MPC", "PSX", "VLO", "OXY", "DVN",
	"HAL", "BKR", "PXD", "MRO", "HES", "APA", "FANG", "EQT", "AR", "CTRA",
}

// delisted symbols still present in older curated lists. Excluded from
// every universe so scans do not burn upstream calls on dead tickers.
var delisted = map[string]struct{}{
	"BBBY": {}, // Chapter 7, 2023
	"SGEN": {}, // acquired by Pfizer
	"ATVI": {}, // acquired by Microsoft
	"PXD":  {}, // acquired by Exxon
	"MRO":  {}, // acquired by ConocoPhillips
	"HA":   {}, // acquired by Alaska Air
	"SAVE": {}, // Chapter 11
	"ARVL": {}, // delisted
	"ELMS": {}, // delisted
	"FSR":  {}, // Chapter 11
	"RIDE": {}, // Chapter 11
	"EXPR": {}, // Chapter 11
}
