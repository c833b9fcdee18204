package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/Vovadm/exammath.ru/internal/admin"
	"github.com/Vovadm/exammath.ru/internal/auth"
	"github.com/Vovadm/exammath.ru/internal/classes"
	"github.com/Vovadm/exammath.ru/internal/database"
	"github.com/Vovadm/exammath.ru/internal/middleware"
	"github.com/Vovadm/exammath.ru/internal/models"
	"github.com/Vovadm/exammath.ru/internal/solutions"
	"github.com/Vovadm/exammath.ru/internal/tasks"
	"github.com/Vovadm/exammath.ru/internal/variants"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[server] no .env file, using environment")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("[server] database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("[server] migrate: %v", err)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("[server] create upload dir: %v", err)
	}

	authStore := auth.NewStore(db)
	authHandler := auth.NewHandler(authStore)

	taskStore := tasks.NewStore(db)
	taskHandler := tasks.NewHandler(taskStore)

	solutionStore := solutions.NewSQLStore(db)
	solutionService := solutions.NewService(solutionStore)
	solutionHandler := solutions.NewHandler(solutionService, solutionStore, uploadDir)
	profileHandler := solutions.NewProfileHandler(solutionService, db)

	variantHandler := variants.NewHandler(variants.NewStore(db))
	classHandler := classes.NewHandler(classes.NewStore(db))
	adminHandler := admin.NewHandler(admin.NewStore(db))

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	api.HandleFunc("/tasks", taskHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id:[0-9]+}", taskHandler.Get).Methods(http.MethodGet)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)

	protected.HandleFunc("/solutions/check", solutionHandler.CheckAnswer).Methods(http.MethodPost)
	protected.HandleFunc("/solutions", solutionHandler.SaveDraft).Methods(http.MethodPost)
	protected.HandleFunc("/solutions/task/{id:[0-9]+}", solutionHandler.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/solutions/upload/{id:[0-9]+}", solutionHandler.Upload).Methods(http.MethodPost)

	protected.HandleFunc("/profile/stats", profileHandler.MyStats).Methods(http.MethodGet)
	protected.HandleFunc("/profile/history", profileHandler.MyHistory).Methods(http.MethodGet)
	protected.HandleFunc("/profile/user/{id:[0-9]+}", profileHandler.UserProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile/user/{id:[0-9]+}/stats", profileHandler.UserStats).Methods(http.MethodGet)
	protected.HandleFunc("/profile/user/{id:[0-9]+}/history", profileHandler.UserHistory).Methods(http.MethodGet)

	protected.HandleFunc("/variants", variantHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/variants/{id:[0-9]+}", variantHandler.Get).Methods(http.MethodGet)

	classList := api.PathPrefix("").Subrouter()
	classList.Use(middleware.Auth, middleware.RequireRole(db, models.RoleStudent, models.RoleTeacher, models.RoleAdmin))
	classList.HandleFunc("/classes", classHandler.List).Methods(http.MethodGet)
	classList.HandleFunc("/classes/{id:[0-9]+}", classHandler.Get).Methods(http.MethodGet)

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.Auth, middleware.RequireRole(db, models.RoleTeacher, models.RoleAdmin))
	staff.HandleFunc("/solutions/task/{id:[0-9]+}/all", solutionHandler.ListAll).Methods(http.MethodGet)
	staff.HandleFunc("/variants", variantHandler.Create).Methods(http.MethodPost)
	staff.HandleFunc("/variants/{id:[0-9]+}", variantHandler.Delete).Methods(http.MethodDelete)
	staff.HandleFunc("/admin/tasks/{id:[0-9]+}", adminHandler.UpdateTask).Methods(http.MethodPut)

	adminOnly := api.PathPrefix("").Subrouter()
	adminOnly.Use(middleware.Auth, middleware.RequireRole(db, models.RoleAdmin))
	adminOnly.HandleFunc("/admin/users", adminHandler.ListUsers).Methods(http.MethodGet)
	adminOnly.HandleFunc("/admin/users/{id:[0-9]+}/role", adminHandler.SetUserRole).Methods(http.MethodPut)
	adminOnly.HandleFunc("/admin/stats", adminHandler.Stats).Methods(http.MethodGet)
	adminOnly.HandleFunc("/admin/tasks/import", adminHandler.ImportTasks).Methods(http.MethodPost)
	adminOnly.HandleFunc("/classes", classHandler.Create).Methods(http.MethodPost)
	adminOnly.HandleFunc("/classes/{id:[0-9]+}", classHandler.Delete).Methods(http.MethodDelete)
	adminOnly.HandleFunc("/classes/{id:[0-9]+}/members", classHandler.AddMember).Methods(http.MethodPost)
	adminOnly.HandleFunc("/classes/{id:[0-9]+}/members/{userID:[0-9]+}", classHandler.RemoveMember).Methods(http.MethodDelete)

	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"https://exammath.ru",
			"https://www.exammath.ru",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("[server] listening on :%s", port)
	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.Fatalf("[server] %v", err)
	}
}
