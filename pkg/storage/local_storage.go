package storage

import (
	"encoding/json"
	"path"
	"sync"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/pkg/protocol"
)

const (
	playerStorageFileName = "player.json"
	roomsDirectory        = "rooms"
)

type LocalStorage struct {
	player playerStorage

	localPath string
	folder    *configdir.Config
	mutex     *sync.RWMutex
}

type playerStorage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roomStorage struct {
	State *protocol.Session `json:"state"`
}

// NewLocalStorage keeps files in localPath, or in the global
// config folder of the application when localPath is empty.
func NewLocalStorage(localPath string) *LocalStorage {
	return &LocalStorage{
		localPath: localPath,
		mutex:     &sync.RWMutex{},
	}
}

func (s *LocalStorage) Initialize() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.localPath != "" {
		s.folder = &configdir.Config{
			Path: s.localPath,
			Type: configdir.Local,
		}
	} else {
		configDirs := configdir.New(config.VendorName, config.ApplicationName)
		folders := configDirs.QueryFolders(configdir.Global)
		if len(folders) == 0 {
			return errors.New("no config folder available")
		}
		s.folder = folders[0]
	}

	err := s.readPlayer()
	config.Logger.Info("storage initialized",
		zap.Any("player", s.player),
		zap.String("configDir", s.folder.Path),
		zap.Error(err),
	)
	return err
}

func (s *LocalStorage) readPlayer() error {
	if !s.folder.Exists(playerStorageFileName) {
		config.Logger.Info("no player storage found")
		return nil
	}

	data, err := s.folder.ReadFile(playerStorageFileName)
	if err != nil {
		return errors.Wrap(err, "failed to read player data")
	}

	err = json.Unmarshal(data, &s.player)
	if err == nil {
		return nil
	}

	config.Logger.Error("failed to parse player storage, clearing storage", zap.Error(err))

	s.player = playerStorage{}
	err = s.savePlayerStorage()
	if err != nil {
		config.Logger.Error("failed to reset player storage", zap.Error(err))
	}

	return nil
}

func (s *LocalStorage) savePlayerStorage() error {
	playerJson, err := json.Marshal(s.player)
	if err != nil {
		return errors.Wrap(err, "failed to marshal player storage")
	}

	err = s.folder.WriteFile(playerStorageFileName, playerJson)
	if err != nil {
		return errors.Wrap(err, "failed to save player storage")
	}

	return nil
}

func (s *LocalStorage) ResetPlayer() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.player = playerStorage{}
	return s.savePlayerStorage()
}

func (s *LocalStorage) ProfileID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.player.ID
}

func (s *LocalStorage) SetProfileID(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.player.ID = id
	return s.savePlayerStorage()
}

func (s *LocalStorage) PlayerName() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.player.Name
}

func (s *LocalStorage) SetPlayerName(name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.player.Name = name
	return s.savePlayerStorage()
}

func (s *LocalStorage) LoadRoomState(code protocol.RoomCode) (*protocol.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	filePath := roomFilePath(code)
	if !s.folder.Exists(filePath) {
		return nil, ErrRoomNotFound
	}

	data, err := s.folder.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read room storage file")
	}

	var room roomStorage
	err = json.Unmarshal(data, &room)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal storage file")
	}
	if room.State == nil {
		return nil, ErrRoomNotFound
	}

	return room.State, nil
}

func (s *LocalStorage) SaveRoomState(code protocol.RoomCode, state *protocol.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	room := roomStorage{
		State: state,
	}

	roomJson, err := json.Marshal(room)
	if err != nil {
		return errors.Wrap(err, "failed to marshal room data")
	}

	err = s.folder.WriteFile(roomFilePath(code), roomJson)
	if err != nil {
		return errors.Wrap(err, "failed to write room storage")
	}

	return nil
}

func roomFilePath(code protocol.RoomCode) string {
	return path.Join(roomsDirectory, code.String()+".json")
}
