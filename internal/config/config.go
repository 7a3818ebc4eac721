package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations, rates and limits.  Monetary rates are basis points so the
// pricing math stays in integers end to end.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing

    MaxGuests             int // upper bound for a wedding's guest count
    DepositBasisPoints    int // deposit share of the total, in basis points
    FinalDueOffsetDays    int // final installment due this many days before the event
    TaxBasisPoints        int // tax rate applied to the subtotal
    ProcessingBasisPoints int // card processing rate applied to the subtotal
    ProcessingFlatCents   int // flat processing fee added per purchase
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Pricing and
// scheduling knobs have sensible defaults so a bare .env still boots.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),  // environment (dev/test/prod)
        Port:           must("APP_PORT"), // port to bind the HTTP server
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),

        MaxGuests:             intOr("MAX_GUESTS", 500),
        DepositBasisPoints:    intOr("DEPOSIT_BASIS_POINTS", 2500),     // 25% deposit
        FinalDueOffsetDays:    intOr("FINAL_DUE_OFFSET_DAYS", 35),      // five weeks before the event
        TaxBasisPoints:        intOr("TAX_BASIS_POINTS", 825),          // 8.25%
        ProcessingBasisPoints: intOr("PROCESSING_BASIS_POINTS", 290),   // 2.9%
        ProcessingFlatCents:   intOr("PROCESSING_FLAT_FEE_CENTS", 30),  // 30¢ per purchase
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// intOr reads an optional integer variable, falling back to def when the
// variable is unset.  A set-but-invalid value is still fatal, since a
// silently ignored pricing knob is worse than a failed boot.
func intOr(key string, def int) int {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
