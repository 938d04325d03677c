package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"rag-chat-api/internal/config"
	"rag-chat-api/internal/domain/entity"
	"rag-chat-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层
	dataLayer, cleanup, err := wire.InitializeDataLayer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 创建默认组织
	orgSlug := os.Getenv("BOOTSTRAP_ORG_SLUG")
	if orgSlug == "" {
		orgSlug = "default-org"
	}

	org, err := dataLayer.OrganizationRepo.GetBySlug(ctx, orgSlug)
	if err != nil {
		log.Fatalf("failed to check organization existence: %v", err)
	}
	if org == nil {
		fmt.Printf("Creating default organization: %s...\n", orgSlug)
		org = entity.NewOrganization("Default Organization", orgSlug)
		if err := dataLayer.OrganizationRepo.Create(ctx, org); err != nil {
			log.Fatalf("failed to create default organization: %v", err)
		}
		fmt.Printf("Default organization created with ID: %s\n", org.ID)
	} else {
		fmt.Printf("Default organization already exists with ID: %s\n", org.ID)
	}

	// 4. 创建默认工作空间
	workspace := entity.NewWorkspace(org.ID, "Default Workspace", "default-workspace")
	if err := dataLayer.WorkspaceRepo.Create(ctx, workspace); err != nil {
		log.Fatalf("failed to create default workspace: %v", err)
	}
	fmt.Printf("Default workspace created with ID: %s\n", workspace.ID)

	// 5. 创建默认智能体
	agent := entity.NewAgent(workspace.ID, "Default Assistant",
		"You are a helpful assistant. Answer questions using the retrieved context when it is relevant.")
	if err := dataLayer.AgentRepo.Create(ctx, agent); err != nil {
		log.Fatalf("failed to create default agent: %v", err)
	}
	fmt.Printf("Default agent created with ID: %s\n", agent.ID)

	// 6. 签发首个 API Key（明文仅在此输出一次）
	key, plaintext, err := entity.NewAPIKey(org.ID, workspace.ID, "bootstrap", nil)
	if err != nil {
		log.Fatalf("failed to generate api key: %v", err)
	}
	if err := dataLayer.APIKeyRepo.Create(ctx, key); err != nil {
		log.Fatalf("failed to persist api key: %v", err)
	}
	fmt.Printf("API key created (store it now, it will not be shown again):\n  %s\n", plaintext)

	fmt.Println("Bootstrap completed successfully.")
}
