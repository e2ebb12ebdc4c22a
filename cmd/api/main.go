package main

import (
	"context"
	"fmt"
	"time"

	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/config"
	"go-marketplace/internal/database"
	"go-marketplace/internal/features/access"
	"go-marketplace/internal/features/admin"
	"go-marketplace/internal/features/audit"
	"go-marketplace/internal/features/auth"
	"go-marketplace/internal/features/category"
	"go-marketplace/internal/features/group"
	"go-marketplace/internal/features/permission"
	"go-marketplace/internal/features/product"
	"go-marketplace/internal/features/role"
	"go-marketplace/internal/features/system"
	"go-marketplace/internal/logger"
	"go-marketplace/internal/metrics"
	"go-marketplace/internal/middleware"
	"go-marketplace/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
				return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware(cfg))

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		log.Debug("registering routes", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	log.Info("all routes registered", zap.Int("count", len(routes)))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("server listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Fatal("server failed to start", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// InitializeIndexes ensures that necessary database indexes are created and
// the built-in permission catalog and role entries exist
func InitializeIndexes(
	lc fx.Lifecycle,
	log *zap.Logger,
	permissionRepo permission.PermissionRepository,
	roleRepo role.RoleRepository,
	groupRepo group.GroupRepository,
	adminRepo admin.AdminRepository,
	categoryRepo category.CategoryRepository,
	auditRepo audit.AuditRepository,
	permissionService permission.PermissionService,
	roleService role.RoleService,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				// Use a background context with timeout for index creation
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				repos := map[string]indexer{
					"permissions":  permissionRepo,
					"roles":        roleRepo,
					"admin_groups": groupRepo,
					"admins":       adminRepo,
					"categories":   categoryRepo,
					"audit_logs":   auditRepo,
				}
				for name, repo := range repos {
					if err := repo.EnsureIndexes(ctx); err != nil {
						log.Error("failed to ensure indexes", zap.String("collection", name), zap.Error(err))
					}
				}
				if err := permissionService.SeedBuiltin(ctx); err != nil {
					log.Error("failed to seed permission catalog", zap.Error(err))
				}
				if err := roleService.SeedDefaults(ctx); err != nil {
					log.Error("failed to seed roles", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// NewTokenIssuer signs admin bearer tokens with the configured secret
func NewTokenIssuer(cfg *config.Config) *utils.TokenIssuer {
	return utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
}

// @title           Marketplace Admin API
// @version         1.0
// @description     Admin authorization and category management for the marketplace.

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Database
			database.NewDatabase,
			database.NewRedis,

			// Initialize Logger
			logger.NewLogger,

			metrics.NewMetrics,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Repository
			audit.NewAuditRepository,
			admin.NewAdminRepository,
			role.NewRoleRepository,
			group.NewGroupRepository,
			permission.NewPermissionRepository,
			category.NewCategoryRepository,
			product.NewProductRepository,

			// Credentials and access control
			NewTokenIssuer,
			access.NewRedisSessionStore,
			access.NewCredentialVerifier,
			access.NewGuard,
			middleware.NewAccess,

			audit.NewAuditService,
			permission.NewPermissionService,
			role.NewRoleService,
			group.NewGroupService,
			admin.NewAdminService,
			auth.NewAuthService,
			category.NewCategoryService,
			category.NewImporter,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(r admin.AdminRepository) access.AdminFinder { return r },
			func(r admin.AdminRepository) audit.AdminFinder { return r },
			func(r admin.AdminRepository) role.AdminCounter { return r },
			func(r admin.AdminRepository) auth.AdminStore { return r },
			func(r group.GroupRepository) access.GroupFinder { return r },
			func(r group.GroupRepository) admin.GroupLookup { return r },
			func(r role.RoleRepository) admin.RoleLookup { return r },
			func(r product.ProductRepository) category.ProductCounter { return r },
			func(m *metrics.Metrics) middleware.AccessRecorder { return m },
			func(m *metrics.Metrics) category.ImportRecorder { return m },

			// Initialize Controller
			auth.NewAuthController,
			admin.NewAdminController,
			role.NewRoleController,
			group.NewGroupController,
			permission.NewPermissionController,
			category.NewCategoryController,
			audit.NewAuditController,

			// Initialize API Routes
			AsRoute(system.NewHealthApi),
			AsRoute(metrics.NewMetricsApi),
			AsRoute(auth.NewAuthApi),
			AsRoute(admin.NewAdminApi),
			AsRoute(role.NewRoleApi),
			AsRoute(group.NewGroupApi),
			AsRoute(permission.NewPermissionApi),
			AsRoute(category.NewCategoryApi),
			AsRoute(audit.NewAuditApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
		),
	)

	app.Run()
}
