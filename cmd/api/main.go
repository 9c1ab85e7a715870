package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiftly-hr/attendance-backend-go/internal/config"
	appHTTP "github.com/shiftly-hr/attendance-backend-go/internal/handler/http"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/cron"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/database"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/geocode"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/jwt"
	"github.com/shiftly-hr/attendance-backend-go/internal/repository/postgresql"
	calendarService "github.com/shiftly-hr/attendance-backend-go/internal/service/calendar"
	geolocationService "github.com/shiftly-hr/attendance-backend-go/internal/service/geolocation"
	sessionService "github.com/shiftly-hr/attendance-backend-go/internal/service/session"
	statsService "github.com/shiftly-hr/attendance-backend-go/internal/service/stats"
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
	defer db.Close()

	loc := cfg.Location()
	clk := clock.System()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	statsRepo := postgresql.NewStatsRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	geocoder := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	resolver := geolocationService.NewResolver(geocoder, clk, cfg.Geolocation.AcquireTimeout, cfg.Geolocation.MaxFixAge)

	nonWorking := sessionService.NewNonWorkingDays(holidayRepo)
	sessionSvc := sessionService.NewSessionService(
		attendanceRepo,
		resolver,
		nonWorking,
		sessionService.Policy{
			StartHour:    cfg.Workday.StartHour,
			StartMinute:  cfg.Workday.StartMinute,
			GraceMinutes: cfg.Workday.GraceMinutes,
			FullDayHours: cfg.Workday.FullDayHours,
			HalfDayHours: cfg.Workday.HalfDayHours,
		},
		clk,
		loc,
	)
	statsSvc := statsService.NewStatsService(statsRepo, attendanceRepo, clk, loc)
	calendarSvc := calendarService.NewCalendarService(attendanceRepo, leaveRepo, holidayRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(sessionSvc)
	statsHandler := appHTTP.NewStatsHandler(statsSvc)
	calendarHandler := appHTTP.NewCalendarHandler(calendarSvc)
	geolocationHandler := appHTTP.NewGeolocationHandler(resolver)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceRepo, nonWorking, clk, loc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		attendanceHandler,
		statsHandler,
		calendarHandler,
		geolocationHandler,
		cfg.App.FrontendURL,
		cfg.App.Env,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down")
	_ = server.Close()
}
