package transport

import (
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	waku "github.com/waku-org/go-waku/waku/v2/protocol"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
)

const contentTopicVersion = 1

// ContentTopicCache maps peer identifiers to the content topic they listen on.
type ContentTopicCache struct {
	logger *zap.Logger
	mutex  sync.Mutex
	topics map[string]string
	hits   int
}

func NewContentTopicCache(logger *zap.Logger) *ContentTopicCache {
	return &ContentTopicCache{
		logger: logger.Named("TopicCache"),
		topics: make(map[string]string),
		hits:   0,
	}
}

func (c *ContentTopicCache) Get(id string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if topic, ok := c.topics[id]; ok {
		c.hits++
		return topic, nil
	}

	topic, err := identifierContentTopic(id)
	if err != nil {
		c.logger.Error("failed to calculate content topic", zap.String("id", id), zap.Error(err))
		return "", err
	}

	c.topics[id] = topic
	c.logger.Debug("new content topic",
		zap.String("id", id),
		zap.String("contentTopic", topic),
	)

	return topic, nil
}

func identifierContentTopic(id string) (string, error) {
	if id == "" {
		return "", errors.New("empty identifier")
	}

	version := strconv.Itoa(contentTopicVersion)
	hash := crypto.Keccak256([]byte(id))
	contentTopicName := hexutil.Encode(hash[:4])[2:]

	contentTopic, err := waku.NewContentTopic(config.ApplicationName, version, contentTopicName, "json")
	if err != nil {
		return "", errors.Wrap(err, "failed to create content topic")
	}

	return contentTopic.String(), nil
}

// SymmetricKey derives the 32-byte key frames addressed to id are encrypted with.
func SymmetricKey(id string) []byte {
	return crypto.Keccak256([]byte(config.ApplicationName + "/" + id))
}
