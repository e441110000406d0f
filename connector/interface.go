// Package connector 为 Genesis 框架提供统一的连接管理能力。
//
// 核心特性：
//   - 统一抽象：通过 Connector 接口提供一致的连接管理 API
//   - 类型安全：通过 TypedConnector[T] 泛型接口确保编译时类型检查
//   - 健康检查：HealthCheck() 按需探测连接状态并缓存结果，供 IsHealthy() 读取
//   - 并发安全：所有公开方法均为并发安全，支持多协程同时访问
//   - 资源管理：遵循"谁创建，谁负责释放"原则，Close() 应在应用层调用
//
// 设计理念：
//   - 接口优先：定义清晰的接口契约，实现细节可替换
//   - 显式依赖注入：通过构造函数注入依赖，避免全局状态
//   - 幂等连接：Connect() 方法可安全重复调用
//   - 延迟连接：NewXXX() 创建连接器但不立即建立连接，Connect() 时才连接
//
// 基本使用：
//
//	cfg := &connector.DynamoDBConfig{
//		Region: "us-east-1",
//	}
//	conn, err := connector.NewDynamoDB(cfg, connector.WithLogger(logger))
//	if err != nil {
//		panic(err)
//	}
//	defer conn.Close()
//
//	// 建立连接（幂等，可多次调用）
//	if err := conn.Connect(ctx); err != nil {
//		panic(err)
//	}
//
//	// 获取类型安全的客户端
//	client := conn.GetClient()
//
// 资源所有权：
//
//	Connector 拥有底层连接的生命周期，应通过 defer 确保 Close() 被调用。
//	Component（如 lease）仅借用 Connector，不应调用 Close()。
//	应用层应按照 LIFO 顺序释放资源：先关闭依赖 Connector 的组件，再关闭 Connector。
package connector

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// =============================================================================
// 基础接口
// =============================================================================

// Connector 定义所有连接器的通用行为。
//
// 所有连接器必须实现此接口，确保一致的连接管理体验。
// 接口方法均为并发安全，可从多个协程同时调用。
type Connector interface {
	// Connect 建立连接。
	//
	// 此方法可安全多次调用，每次调用都会重新探测端点。
	// 连接过程阻塞直到成功或失败。
	//
	// 返回错误：探测失败时返回包装了底层 SDK 错误的错误。
	Connect(ctx context.Context) error

	// Close 关闭连接并释放资源。
	//
	// 此方法是幂等的，可安全多次调用。关闭后 IsHealthy() 返回 false；
	// DynamoDB 连接器不会清空客户端，GetClient() 仍返回原客户端。
	//
	// 重要：应在应用层通过 defer 确保调用，遵循"谁创建，谁负责释放"原则。
	Close() error

	// HealthCheck 检查连接健康状态。
	//
	// 通过发送测试请求验证连接可用性。此方法会更新内部健康状态缓存，
	// 可通过 IsHealthy() 快速读取。
	//
	// 返回错误：探测失败时返回包装了底层 SDK 错误的错误。
	HealthCheck(ctx context.Context) error

	// IsHealthy 返回缓存的健康状态。
	//
	// 此方法无阻塞，直接返回最后一次 HealthCheck() 的结果。
	// 对于实时健康检查，应使用 HealthCheck() 方法。
	IsHealthy() bool

	// Name 返回连接实例名称。
	//
	// 名称用于日志记录和指标标识，应在配置中唯一标识此连接器实例。
	Name() string
}

// =============================================================================
// 泛型接口
// =============================================================================

// TypedConnector 提供类型安全的客户端访问。
//
// 此接口组合了 Connector 基础接口，并添加了 GetClient() 方法
// 用于获取特定类型的客户端。所有具体连接器接口都应基于此定义。
//
// 类型参数 T 是客户端类型，如 *dynamodb.Client 等。
type TypedConnector[T any] interface {
	Connector

	// GetClient 返回底层客户端实例。
	//
	// 调用者应通过此客户端执行实际的数据操作。
	// 注意：在 Connect() 之前或 Close() 之后调用可能返回 nil。
	GetClient() T
}

// =============================================================================
// 具体连接器接口
// =============================================================================

// DynamoDBConnector DynamoDB 连接器接口。
//
// 提供对 Amazon DynamoDB 的连接管理，供 lease 包的 Store 适配器通过
// 该连接器获取的 *dynamodb.Client 发出条件化的 PutItem/UpdateItem/DeleteItem
// 及 DescribeTable 请求。lease 包永不自行构造 AWS SDK 对象。
type DynamoDBConnector interface {
	TypedConnector[*dynamodb.Client]
}
