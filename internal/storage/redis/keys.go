package redis

import (
	"fmt"

	"github.com/mcoot/undercover/internal/model"
)

const keyPrefix = "undercover"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// sessionKey returns the Redis key for a Session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// roomBindingKey returns the Redis key holding the room a player is seated in
func roomBindingKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:binding:%s", keyPrefix, playerID)
}

// wordPairsKey returns the Redis key for the word pair list
func wordPairsKey() string {
	return fmt.Sprintf("%s:word_pairs", keyPrefix)
}
