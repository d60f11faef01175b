package store

import (
	"fmt"
	"time"

	"github.com/ditto-assistant/ai/pkg/chat"
)

const (
	// Chat histories expire a day after the last update and keep at most
	// the trailing 200 messages.
	chatTTL         = 24 * time.Hour
	maxStoredPerKey = 200
)

// ChatStore persists per-chat message histories in Redis.
type ChatStore struct {
	redis *RedisClient
}

func NewChatStore(redisURL string) (*ChatStore, error) {
	client, err := NewRedisClient(redisURL)
	if err != nil {
		return nil, err
	}
	return &ChatStore{redis: client}, nil
}

func chatKey(chatID string) string {
	return fmt.Sprintf("chat:%s:messages", chatID)
}

func (cs *ChatStore) AddMessages(chatID string, messages []chat.Message) error {
	key := chatKey(chatID)

	for _, msg := range messages {
		data, err := encodeMessage(msg)
		if err != nil {
			return err
		}
		if err := cs.redis.RPush(key, data); err != nil {
			return fmt.Errorf("failed to add message: %w", err)
		}
	}

	if err := cs.redis.Expire(key, chatTTL); err != nil {
		return fmt.Errorf("failed to set expiration: %w", err)
	}
	if err := cs.redis.LTrim(key, -maxStoredPerKey, -1); err != nil {
		return fmt.Errorf("failed to trim messages: %w", err)
	}
	return nil
}

func (cs *ChatStore) GetMessages(chatID string) ([]chat.Message, error) {
	return cs.readRange(chatID, 0, -1)
}

func (cs *ChatStore) GetRecentMessages(chatID string, count int) ([]chat.Message, error) {
	return cs.readRange(chatID, int64(-count), -1)
}

func (cs *ChatStore) readRange(chatID string, start, stop int64) ([]chat.Message, error) {
	raw, err := cs.redis.LRange(chatKey(chatID), start, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	messages := make([]chat.Message, 0, len(raw))
	for _, item := range raw {
		msg, err := decodeMessage([]byte(item))
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (cs *ChatStore) Exists(chatID string) (bool, error) {
	n, err := cs.redis.Exists(chatKey(chatID))
	if err != nil {
		return false, fmt.Errorf("failed to check chat: %w", err)
	}
	return n > 0, nil
}

func (cs *ChatStore) DeleteMessages(chatID string) error {
	return cs.redis.Del(chatKey(chatID))
}

func (cs *ChatStore) MessageCount(chatID string) (int64, error) {
	return cs.redis.LLen(chatKey(chatID))
}

func (cs *ChatStore) Ping() error {
	return cs.redis.Ping()
}

func (cs *ChatStore) Close() error {
	return cs.redis.Close()
}
