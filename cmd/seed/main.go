package main

import (
	"context"
	"errors"
	"log"
	"time"

	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/common/models"
	"go-marketplace/internal/config"
	"go-marketplace/internal/database"
	"go-marketplace/internal/features/admin"
	"go-marketplace/internal/features/audit"
	"go-marketplace/internal/features/category"
	"go-marketplace/internal/features/group"
	"go-marketplace/internal/features/permission"
	"go-marketplace/internal/features/role"
	"go-marketplace/internal/logger"
	"go-marketplace/pkg/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Seed creates indexes, the permission catalog, the well-known roles and
// a first super admin, then stops the app.
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	permissionRepo permission.PermissionRepository,
	roleRepo role.RoleRepository,
	groupRepo group.GroupRepository,
	adminRepo admin.AdminRepository,
	categoryRepo category.CategoryRepository,
	permissionService permission.PermissionService,
	roleService role.RoleService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()

				logger.Info("Starting database seeding")

				for _, repo := range []interface {
					EnsureIndexes(context.Context) error
				}{permissionRepo, roleRepo, groupRepo, adminRepo, categoryRepo} {
					if err := repo.EnsureIndexes(ctx); err != nil {
						logger.Error("Failed to ensure indexes", zap.Error(err))
						return
					}
				}

				if err := permissionService.SeedBuiltin(ctx); err != nil {
					logger.Error("Failed to seed permissions", zap.Error(err))
					return
				}
				logger.Info("Permission catalog seeded", zap.Int("count", len(authz.BuiltinCatalog)))

				if err := roleService.SeedDefaults(ctx); err != nil {
					logger.Error("Failed to seed roles", zap.Error(err))
					return
				}
				logger.Info("Roles seeded")

				seedSuperAdmin(ctx, cfg, adminRepo, logger)
			}()
			return nil
		},
	})
}

func seedSuperAdmin(ctx context.Context, cfg *config.Config, repo admin.AdminRepository, logger *zap.Logger) {
	email := cfg.SeedAdminEmail
	if cfg.SeedAdminPassword == "" {
		logger.Warn("SEED_ADMIN_PASSWORD not set, skipping super admin", zap.String("email", email))
		return
	}

	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		logger.Info("Super admin exists, skipping", zap.String("email", email))
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		logger.Error("Failed to look up super admin", zap.Error(err))
		return
	}

	hash, err := utils.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		logger.Error("Failed to hash password", zap.Error(err))
		return
	}

	now := time.Now()
	a := &models.Admin{
		FirstName:    "Super",
		LastName:     "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         authz.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, a); err != nil {
		logger.Error("Failed to create super admin", zap.Error(err))
		return
	}
	logger.Info("Super admin created", zap.String("email", email), zap.String("id", a.ID.Hex()))
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			permission.NewPermissionRepository,
			role.NewRoleRepository,
			group.NewGroupRepository,
			admin.NewAdminRepository,
			category.NewCategoryRepository,
			func(r admin.AdminRepository) audit.AdminFinder { return r },
			func(r admin.AdminRepository) role.AdminCounter { return r },
			audit.NewAuditRepository,
			audit.NewAuditService,
			permission.NewPermissionService,
			role.NewRoleService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
