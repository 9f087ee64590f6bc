package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Logical Cloud Functions endpoint names.
const (
	EndpointCreateDiscount         = "createDiscount"
	EndpointUpdateDiscount         = "updateDiscount"
	EndpointGetDiscounts           = "getDiscounts"
	EndpointGetDiscount            = "getDiscount"
	EndpointDeleteDiscount         = "deleteDiscount"
	EndpointValidateDiscountCode   = "validateDiscountCode"
	EndpointGetAllUsers            = "getAllUsers"
	EndpointSearchUser             = "searchUser"
	EndpointGetPlantsDropdown      = "getPlantsDropdown"
	EndpointGetAllPlantGenus       = "getAllPlantGenus"
	EndpointGetPlantCareTags       = "getPlantCareTags"
	EndpointGetPlantTypes          = "getPlantTypes"
	EndpointGetPlantGrowthForms    = "getPlantGrowthForms"
	EndpointGetRegionsDropdown     = "getRegionsDropdown"
	EndpointGetDeliveryOptions     = "getDeliveryOptions"
	EndpointGetCountry             = "getCountry"
	EndpointGetListingType         = "getListingType"
	EndpointGetShippingIndex       = "getShippingIndex"
	EndpointGetAcclimationIndex    = "getAcclimationIndex"
	EndpointGetSpeciesFromListings = "getSpeciesFromListings"
	EndpointGetAdminOrders         = "getAdminOrders"
	EndpointGenerateInvoice        = "generateInvoice"
	EndpointGetInvoicePDF          = "getInvoicePdf"
)

// EndpointNames lists every endpoint the gateway can call.
var EndpointNames = []string{
	EndpointCreateDiscount,
	EndpointUpdateDiscount,
	EndpointGetDiscounts,
	EndpointGetDiscount,
	EndpointDeleteDiscount,
	EndpointValidateDiscountCode,
	EndpointGetAllUsers,
	EndpointSearchUser,
	EndpointGetPlantsDropdown,
	EndpointGetAllPlantGenus,
	EndpointGetPlantCareTags,
	EndpointGetPlantTypes,
	EndpointGetPlantGrowthForms,
	EndpointGetRegionsDropdown,
	EndpointGetDeliveryOptions,
	EndpointGetCountry,
	EndpointGetListingType,
	EndpointGetShippingIndex,
	EndpointGetAcclimationIndex,
	EndpointGetSpeciesFromListings,
	EndpointGetAdminOrders,
	EndpointGenerateInvoice,
	EndpointGetInvoicePDF,
}

// Config holds application runtime configuration.
type Config struct {
	Env                 string
	HTTPPort            string
	FunctionsBaseURL    string
	Endpoints           map[string]string
	BackendTimeout      time.Duration
	BackendServiceToken string
	ConnectivityProbe   string
	DatabaseURL         string
	JWTSecret           string
	AccessTokenTTL      time.Duration
	AdminEmails         []string
	GoogleClientID      string
	FirebaseProjectID   string
	FirebaseCredFile    string
	SearchDebounce      time.Duration
	DirectoryPageLimit  int
	InvoiceDir          string
	InvoiceBucket       string
	S3Endpoint          string
	S3AccessKey         string
	S3SecretKey         string
	S3PublicBaseURL     string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	ShutdownTimeout     time.Duration
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		FunctionsBaseURL:    strings.TrimRight(os.Getenv("FUNCTIONS_BASE_URL"), "/"),
		BackendTimeout:      getDuration("BACKEND_TIMEOUT", 30*time.Second),
		BackendServiceToken: os.Getenv("BACKEND_SERVICE_TOKEN"),
		ConnectivityProbe:   os.Getenv("CONNECTIVITY_PROBE_URL"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AccessTokenTTL:      getDuration("ACCESS_TOKEN_TTL", time.Hour),
		AdminEmails:         getList("ADMIN_EMAILS"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredFile:    os.Getenv("FIREBASE_CREDENTIALS"),
		SearchDebounce:      getDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		DirectoryPageLimit:  getInt("DIRECTORY_PAGE_LIMIT", 100),
		InvoiceDir:          getEnv("INVOICE_DIR", "invoices"),
		InvoiceBucket:       os.Getenv("INVOICE_BUCKET"),
		S3Endpoint:          os.Getenv("S3_ENDPOINT"),
		S3AccessKey:         os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:         os.Getenv("S3_SECRET_KEY"),
		S3PublicBaseURL:     os.Getenv("S3_PUBLIC_BASE_URL"),
		ReadTimeout:         getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:        getDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:         getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:     getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.FunctionsBaseURL == "" {
		return cfg, errors.New("FUNCTIONS_BASE_URL is required")
	}
	if cfg.JWTSecret == "" && cfg.FirebaseProjectID == "" && cfg.GoogleClientID == "" {
		return cfg, errors.New("one of JWT_SECRET, FIREBASE_PROJECT_ID or GOOGLE_CLIENT_ID is required")
	}
	cfg.Endpoints = loadEndpoints(cfg.FunctionsBaseURL)
	return cfg, nil
}

// loadEndpoints maps each endpoint name to <base>/<name>. ENDPOINT_<NAME>
// overrides a single URL and ENDPOINTS_DISABLED removes names entirely.
func loadEndpoints(base string) map[string]string {
	out := make(map[string]string, len(EndpointNames))
	for _, name := range EndpointNames {
		out[name] = getEnv("ENDPOINT_"+strings.ToUpper(name), base+"/"+name)
	}
	for _, name := range strings.Split(os.Getenv("ENDPOINTS_DISABLED"), ",") {
		delete(out, strings.TrimSpace(name))
	}
	return out
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}
