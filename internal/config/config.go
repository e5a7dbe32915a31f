package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret          string
	JWTExpirationHours time.Duration

	// Chính sách phí đỗ xe
	DepositAmount float64 // Tiền cọc ghi nhận khi tạo booking
	RatePerMinute float64 // Đơn giá mỗi phút

	InitialSlotCount int // Số chỗ đỗ khởi tạo khi DB trống

	GateOpenDurationSeconds int
	GateCommandTTL          time.Duration // Lệnh mở cổng quá hạn sẽ bị dọn dẹp

	AWSRegion        string
	SQSEventQueueURL string
	IoTMQTTEndpoint  string

	// Tài khoản admin được seed lúc khởi động (nếu có cấu hình)
	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Cảnh báo: Không thể tải file .env: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	deposit, _ := strconv.ParseFloat(getEnv("DEPOSIT_AMOUNT", "100"), 64)
	rate, _ := strconv.ParseFloat(getEnv("RATE_PER_MINUTE", "2"), 64)
	initialSlots, _ := strconv.Atoi(getEnv("INITIAL_SLOT_COUNT", "10"))
	gateOpenSecs, _ := strconv.Atoi(getEnv("GATE_OPEN_DURATION_SECONDS", "5"))
	gateTTLSecs, _ := strconv.Atoi(getEnv("GATE_COMMAND_TTL_SECONDS", "60"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		DepositAmount: deposit,
		RatePerMinute: rate,

		InitialSlotCount: initialSlots,

		GateOpenDurationSeconds: gateOpenSecs,
		GateCommandTTL:          time.Duration(gateTTLSecs) * time.Second,

		AWSRegion:        getEnv("AWS_REGION", "ap-southeast-1"),
		SQSEventQueueURL: getEnv("SQS_EVENT_QUEUE_URL", ""),
		IoTMQTTEndpoint:  getEnv("IOT_MQTT_ENDPOINT", ""),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
