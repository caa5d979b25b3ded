package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	crosspay "crosspay_back"
	"crosspay_back/pkg/cache"
	"crosspay_back/pkg/chainclient"
	"crosspay_back/pkg/handler"
	"crosspay_back/pkg/rates"
	"crosspay_back/pkg/repository"
	"crosspay_back/pkg/service"
	"crosspay_back/pkg/utils"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("Запуск сервера")
	if err := godotenv.Load(); err != nil {
		logrus.Infof("Ошибка инициализации переменных окружения .env: %s \n", err)
	}

	if err := InitConfig(); err != nil {
		logrus.Fatalf("Ошибка (viper) при инициализации конфига .yaml: %s \n", err.Error())
	}
	logrus.Infoln("Конфиг YAML инициализирован")

	db, err := repository.NewPostgresDB(repository.Config{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: os.Getenv("DB_PASS"),
		DBName:   viper.GetString("db.dbname"),
		SSLMode:  viper.GetString("db.sslmode"),
	})
	if err != nil {
		logrus.Fatalf("Ошибка при инициализации базы данных: %s \n", err.Error())
	}
	logrus.Info("База данных подключена")

	rateClient := rates.NewClient(
		viper.GetString("rates.url"),
		os.Getenv("RATES_API_KEY"),
		viper.GetDuration("rates.timeout"),
	)
	nodeClient := chainclient.NewClient(
		viper.GetString("chain.node_url"),
		os.Getenv("CHAIN_NODE_API_KEY"),
		viper.GetDuration("chain.timeout"),
	)
	idemStore := cache.NewIdempotencyStore(viper.GetDuration("chain.idem_ttl"))
	notifier := utils.NewMailNotifier(
		viper.GetString("mail.from"),
		viper.GetString("mail.to"),
		viper.GetString("mail.smtp_host"),
		viper.GetInt("mail.smtp_port"),
	)

	repos := repository.NewRepository(db)
	services := service.NewService(repos, rateClient, nodeClient, idemStore, notifier)
	handlers := handler.NewHandler(services)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Фоновая сверка закрывает окно между брадкастом и записью в журнал
	go runSweep(ctx, services, viper.GetDuration("chain.sweep_interval"))

	srv := new(crosspay.Server)
	go func() {
		if err := srv.Run(os.Getenv("PORT"), handlers.InitRoute(viper.GetStringSlice("server.allowed_origins"))); err != nil {
			logrus.Errorf("Ошибка при запуске сервера: %s \n", err)
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("Останавливаем сервер")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Ошибка при остановке сервера: %s \n", err)
	}
}

func runSweep(ctx context.Context, services *service.Service, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := services.TransferCoordinator.Sweep(ctx); err != nil {
				logrus.Errorf("Ошибка фоновой сверки: %s", err)
			}
		}
	}
}

func InitConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}
