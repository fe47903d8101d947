package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/internflow/internflow-backend-go/internal/config"
	appHTTP "github.com/internflow/internflow-backend-go/internal/handler/http"
	"github.com/internflow/internflow-backend-go/internal/pkg/database"
	"github.com/internflow/internflow-backend-go/internal/pkg/jwt"
	"github.com/internflow/internflow-backend-go/internal/repository/postgresql"
	allowanceService "github.com/internflow/internflow-backend-go/internal/service/allowance"
	attendanceService "github.com/internflow/internflow-backend-go/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "internflow"),
		slog.String("env", cfg.App.Env),
	)

	claimRepo := postgresql.NewClaimRepository(db)
	walletRepo := postgresql.NewWalletRepository(db)
	syncLockRepo := postgresql.NewSyncLockRepository(db)
	rulesRepo := postgresql.NewRulesRepository(db)
	internRepo := postgresql.NewInternRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	allowanceSvc := allowanceService.NewAllowanceService(
		claimRepo,
		walletRepo,
		syncLockRepo,
		rulesRepo,
		internRepo,
		attendanceRepo,
		leaveRepo,
		correctionRepo,
		cfg.Engine.SyncLockStaleness,
		logger,
	)
	trigger := allowanceService.NewTrigger(allowanceSvc, logger)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, trigger)

	allowanceHandler := appHTTP.NewAllowanceHandler(allowanceSvc, trigger)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(JWTService, allowanceHandler, attendanceHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
