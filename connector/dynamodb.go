package connector

import (
	"context"
	"sync/atomic"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/ceyewan/genesis/clog"
	"github.com/ceyewan/genesis/xerrors"
)

type dynamoDBConnector struct {
	cfg     *DynamoDBConfig
	client  *dynamodb.Client
	logger  clog.Logger
	healthy atomic.Bool
}

// NewDynamoDB 创建 DynamoDB 连接器
//
// NewXXX 只构造客户端，不建立连接；调用 Connect() 才会真正探测可用性
// (DescribeLimits)，符合包内"延迟连接"的约定。
func NewDynamoDB(cfg *DynamoDBConfig, opts ...Option) (DynamoDBConnector, error) {
	if cfg == nil {
		return nil, ErrConfig
	}
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Wrapf(err, "invalid dynamodb config")
	}

	opt := &options{}
	for _, o := range opts {
		o(opt)
	}
	opt.applyDefaults()

	c := &dynamoDBConnector{
		cfg:    cfg,
		logger: opt.logger.With(clog.String("connector", "dynamodb"), clog.String("name", cfg.Name)),
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(cfg.MaxRetries))

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, xerrors.Wrapf(err, "dynamodb connector[%s]: load aws config failed", cfg.Name)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = &cfg.Endpoint
		})
	}

	c.client = dynamodb.NewFromConfig(awsCfg, clientOpts...)
	return c, nil
}

// Connect 建立连接（探测 DynamoDB 端点可达性）
func (c *dynamoDBConnector) Connect(ctx context.Context) error {
	c.logger.Info("attempting to connect to dynamodb", clog.String("region", c.cfg.Region))

	connectCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	if _, err := c.client.DescribeLimits(connectCtx, &dynamodb.DescribeLimitsInput{}); err != nil {
		c.logger.Error("failed to connect to dynamodb", clog.Error(err))
		return xerrors.Wrapf(err, "dynamodb connector[%s]: connection failed", c.cfg.Name)
	}

	c.healthy.Store(true)
	c.logger.Info("successfully connected to dynamodb")
	return nil
}

// Close DynamoDB 客户端基于 HTTP，无需显式关闭底层连接，这里仅翻转健康状态
func (c *dynamoDBConnector) Close() error {
	c.logger.Info("closing dynamodb connector")
	c.healthy.Store(false)
	return nil
}

// HealthCheck 检查连接健康状态
func (c *dynamoDBConnector) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.client.DescribeLimits(checkCtx, &dynamodb.DescribeLimitsInput{}); err != nil {
		c.healthy.Store(false)
		c.logger.Warn("dynamodb health check failed", clog.Error(err))
		return xerrors.Wrapf(err, "dynamodb connector[%s]: health check failed", c.cfg.Name)
	}

	c.healthy.Store(true)
	return nil
}

// IsHealthy 返回缓存的健康状态
func (c *dynamoDBConnector) IsHealthy() bool {
	return c.healthy.Load()
}

// Name 返回连接器名称
func (c *dynamoDBConnector) Name() string {
	return c.cfg.Name
}

// GetClient 返回 DynamoDB 客户端
func (c *dynamoDBConnector) GetClient() *dynamodb.Client {
	return c.client
}
