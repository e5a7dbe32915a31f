package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/DevBolt07/smart-parking/internal/api"
	"github.com/DevBolt07/smart-parking/internal/api/handler"
	"github.com/DevBolt07/smart-parking/internal/api/middleware"
	"github.com/DevBolt07/smart-parking/internal/config"
	"github.com/DevBolt07/smart-parking/internal/iot"
	"github.com/DevBolt07/smart-parking/internal/repository/postgresql"
	"github.com/DevBolt07/smart-parking/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Setup Database Connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}
	defer db.Close()
	log.Println("Đã kết nối database thành công!")

	// 3. Khởi tạo AWS SDK Config và clients (chỉ khi cần)
	var sqsClient *sqs.Client
	var iotDataPlaneClient *iotdataplane.Client
	if cfg.SQSEventQueueURL != "" || cfg.IoTMQTTEndpoint != "" {
		awsSDKCfg, err := awsgo_config.LoadDefaultConfig(context.TODO(), awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Không thể tải AWS SDK config: %v", err)
		}
		log.Println("Đã tải AWS SDK config thành công cho region:", cfg.AWSRegion)

		sqsClient = sqs.NewFromConfig(awsSDKCfg)
		iotDataPlaneClient = iotdataplane.NewFromConfig(awsSDKCfg, func(o *iotdataplane.Options) {
			if cfg.IoTMQTTEndpoint != "" {
				endpointWithSchema := cfg.IoTMQTTEndpoint
				if !strings.HasPrefix(endpointWithSchema, "https://") && !strings.HasPrefix(endpointWithSchema, "http://") {
					endpointWithSchema = "https://" + endpointWithSchema
				}
				o.BaseEndpoint = aws.String(endpointWithSchema)
			}
		})
		log.Println("Đã khởi tạo SQS client và IoT Data Plane client.")
	}

	// 4. Initialize Repositories
	userRepo := postgresql.NewPgUserRepository(db)
	slotRepo := postgresql.NewPgSlotRepository(db)
	bookingRepo := postgresql.NewPgBookingRepository(db)
	gateCommandRepo := postgresql.NewPgGateCommandRepository(db)
	deviceEventLogRepo := postgresql.NewPgDeviceEventLogRepository(db)

	// 5. WebSocket manager
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	slotService := service.NewSlotService(slotRepo, webSocketManager)
	bookingService := service.NewBookingService(bookingRepo, cfg.DepositAmount, cfg.RatePerMinute)
	iotService := service.NewIoTService(slotService, iotDataPlaneClient, cfg, deviceEventLogRepo)
	gateService := service.NewGateService(gateCommandRepo, iotService, cfg.GateOpenDurationSeconds, cfg.GateCommandTTL)

	// 7. Seed dữ liệu khởi động
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := slotService.EnsureInitialSlots(seedCtx, cfg.InitialSlotCount); err != nil {
		log.Fatalf("Không thể khởi tạo slot ban đầu: %v", err)
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdminUser(seedCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("Không thể seed tài khoản admin: %v", err)
		}
	}
	cancelSeed()

	// 8. Initialize Auth Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 9. Khởi tạo và Chạy SQS Consumer
	var wg sync.WaitGroup
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())

	if cfg.SQSEventQueueURL == "" {
		log.Println("CẢNH BÁO: SQS_EVENT_QUEUE_URL chưa được cấu hình. SQS Consumer sẽ không chạy.")
	} else {
		sqsConsumer := iot.NewSQSConsumer(sqsClient, cfg, iotService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sqsConsumer.Start(consumerCtx)
			log.Println("SQS Consumer đã dừng.")
		}()
	}

	// start background job để cleanup lệnh mở cổng quá hạn
	go startGateCommandCleanupJob(consumerCtx, gateService)

	// 10. Setup HTTP Router
	router := api.SetupRouter(authService, slotService, bookingService, gateService, authMiddleware, webSocketManager)

	// 11. Start HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	cancelConsumer()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server buộc phải tắt: %v", err)
	}

	if cfg.SQSEventQueueURL != "" {
		log.Println("Đang chờ SQS consumer dừng (tối đa 5 giây)...")
		c := make(chan struct{})
		go func() {
			defer close(c)
			wg.Wait()
		}()
		select {
		case <-c:
			log.Println("SQS consumer đã dừng hoàn toàn.")
		case <-time.After(5 * time.Second):
			log.Println("SQS consumer không dừng trong thời gian chờ.")
		}
	}

	log.Println("Server đã tắt.")
}

func startGateCommandCleanupJob(ctx context.Context, gateService *service.GateService) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			count, err := gateService.CleanupExpired(jobCtx)
			if err != nil {
				log.Printf("Lỗi cleanup lệnh mở cổng quá hạn: %v", err)
			} else if count > 0 {
				log.Printf("Đã cleanup %d lệnh mở cổng quá hạn", count)
			}
			cancel()
		}
	}
}
