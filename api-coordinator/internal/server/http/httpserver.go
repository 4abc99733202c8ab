package httpserver

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"taskgrid/api-coordinator/internal/auth"
	"taskgrid/api-coordinator/internal/cache"
	"taskgrid/api-coordinator/internal/dispatcher"
	"taskgrid/api-coordinator/internal/health"
	"taskgrid/api-coordinator/internal/monitoring"
	"taskgrid/api-coordinator/internal/plattform"
	"taskgrid/api-coordinator/internal/priority"
	"taskgrid/api-coordinator/internal/registry"
	"taskgrid/api-coordinator/internal/tasks"
	"taskgrid/pkg/styles"
	"taskgrid/pkg/types"

	"github.com/gin-gonic/gin"
)

const (
	defaultMongoRetryInterval = 15 * time.Second
	defaultWorkerNodes        = "http://worker1:8001,http://worker2:8002,http://worker3:8003"
)

// NewRouter arma todo el coordinador: mongo, redis, dispatcher y las rutas
// HTTP. Bloquea sirviendo en HTTP_ADDR.
func NewRouter(ctx context.Context) *gin.Engine {
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	mongoClient := connectMongoWithRetry(ctx)
	if mongoClient == nil {
		log.Print(styles.SprintfS("error", "[HTTP] No se iniciará el servidor HTTP porque no se pudo conectar a MongoDB"))
		return r
	}

	dbName := os.Getenv("MONGO_DB_NAME")
	if dbName == "" {
		dbName = "taskgrid"
	}

	// auth
	usersColl := mongoClient.GetCollection(dbName, "users")
	repo := auth.NewMongoRepository(usersColl)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default-secret-key" // default
	}

	tokenManager := auth.NewJWTTokenManager(secret)
	svc := auth.NewService(repo, tokenManager)
	handler := auth.NewHandler(svc)

	api := r.Group("/api")
	handler.RegisterRoutes(api.Group("/auth"))

	// predictor de prioridad (glue sobre el modelo exportado)
	predictor, err := priority.LoadModel(os.Getenv("PRIORITY_MODEL_PATH"))
	if err != nil {
		log.Print(styles.SprintfS("warn", "[HTTP] No se pudo cargar el modelo de prioridad, usando el default: %v", err))
		predictor = priority.NewDefault()
	}

	// dispatcher con un solo http.Client compartido
	pool := workerPool()
	httpClient := &http.Client{}
	disp := dispatcher.New(httpClient, pool, dispatchTimeout())

	// registro de dispatches en Redis
	reg := registry.New(cache.NewRedisClient())

	// tasks
	tasksColl := mongoClient.GetCollection(dbName, "tasks")
	countersColl := mongoClient.GetCollection(dbName, "counters")
	taskRepo := tasks.NewMongoRepository(tasksColl, countersColl)
	taskSvc := tasks.NewService(taskRepo, predictor, disp, reg)
	taskHandler := tasks.NewHandler(taskSvc)

	protected := api.Group("/tasks")
	protected.Use(auth.AuthMiddleware(tokenManager))
	taskHandler.RegisterRoutes(protected)

	// health + monitoring
	healthHandler := health.NewHandler(health.NewService(mongoClient, pool))
	healthHandler.RegisterRoutes(api.Group("/"))

	monHandler := monitoring.NewHandler(monitoring.NewService(mongoClient, reg, pool))
	monHandler.RegisterRoutes(api.Group("/"))

	// Escuchar en todas las interfaces del contenedor
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	log.Print(styles.SprintfS("info", "[HTTP] Escuchando en %s", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal(styles.SprintfS("error", "[HTTP] Error: %v", err))
	}

	return r
}

// workerPool lee la lista fija y ordenada de workers desde el entorno.
func workerPool() []types.WorkerNode {
	raw := os.Getenv("WORKER_NODES")
	if strings.TrimSpace(raw) == "" {
		raw = defaultWorkerNodes
	}

	parts := strings.Split(raw, ",")
	pool := make([]types.WorkerNode, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "/"))
		if p != "" {
			pool = append(pool, types.WorkerNode(p))
		}
	}
	return pool
}

func dispatchTimeout() time.Duration {
	val := strings.TrimSpace(os.Getenv("DISPATCH_TIMEOUT"))
	if val == "" {
		return dispatcher.DefaultTimeout
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	log.Printf("[HTTP] Valor inválido para DISPATCH_TIMEOUT (%s), usando %s", val, dispatcher.DefaultTimeout)
	return dispatcher.DefaultTimeout
}

func connectMongoWithRetry(ctx context.Context) *plattform.MongoService {
	interval := mongoRetryInterval()
	maxRetries := mongoMaxRetries()
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			log.Printf("[HTTP] Context cancelado antes de conectar a MongoDB: %v", ctx.Err())
			return nil
		default:
		}

		attempt++
		client, err := plattform.NewClient(ctx)
		if err == nil {
			if attempt > 1 {
				log.Printf("[HTTP] Conexión a MongoDB exitosa tras %d intentos", attempt)
			}
			return client
		}

		log.Printf("[HTTP] Error conectando a MongoDB (intento %d): %v", attempt, err)
		if maxRetries > 0 && attempt >= maxRetries {
			log.Printf("[HTTP] Alcanzado el máximo de intentos (%d) sin éxito", maxRetries)
			return nil
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			log.Printf("[HTTP] Context cancelado mientras se esperaba para reintentar: %v", ctx.Err())
			return nil
		}
	}
}

func mongoRetryInterval() time.Duration {
	val := strings.TrimSpace(os.Getenv("MONGO_RETRY_INTERVAL"))
	if val == "" {
		return defaultMongoRetryInterval
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	log.Printf("[HTTP] Intervalo inválido para MONGO_RETRY_INTERVAL (%s), usando %s", val, defaultMongoRetryInterval)
	return defaultMongoRetryInterval
}

func mongoMaxRetries() int {
	val := strings.TrimSpace(os.Getenv("MONGO_MAX_RETRIES"))
	if val == "" {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		log.Printf("[HTTP] Valor inválido para MONGO_MAX_RETRIES (%s), usando ilimitado", val)
		return 0
	}
	return n
}
