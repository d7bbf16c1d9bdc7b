package memhost

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/storage"
	"github.com/oriumgames/compat/host"
)

// Column is the stored form of a chunk.
type Column struct {
	// Blocks is the block payload, see encodeBlocks.
	Blocks []byte
	// Entities are the block entities keyed by world position.
	Entities map[cube.Pos]*host.BlockEntity
}

// Store persists chunk columns.
type Store interface {
	// LoadColumn returns the stored column at pos, or nil if there is none.
	LoadColumn(dim string, pos world.ChunkPos) (*Column, error)
	// StoreColumn writes col at pos.
	StoreColumn(dim string, pos world.ChunkPos, col *Column) error
	Close() error
}

const (
	keyBlocks   byte = 'b'
	keyEntities byte = 'e'
)

// LevelStore is a Store backed by a goleveldb database.
type LevelStore struct {
	db    *leveldb.DB
	saves atomic.Int64
}

// OpenLevelStore opens or creates a database in dir.
func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("memhost: open level store %s: %w", dir, err)
	}
	return &LevelStore{db: db}, nil
}

// NewMemoryStore creates a LevelStore that keeps its data in memory.
func NewMemoryStore() (*LevelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db}, nil
}

// key builds the database key of a record: the dimension name, a zero byte,
// the chunk coordinates and the record tag.
func key(dim string, pos world.ChunkPos, tag byte) []byte {
	k := make([]byte, 0, len(dim)+10)
	k = append(k, dim...)
	k = append(k, 0)
	k = binary.LittleEndian.AppendUint32(k, uint32(pos[0]))
	k = binary.LittleEndian.AppendUint32(k, uint32(pos[1]))
	return append(k, tag)
}

// entityRecord is the stored form of a block entity.
type entityRecord struct {
	Pos   [3]int           `json:"pos"`
	Kind  string           `json:"kind"`
	Items []host.ItemStack `json:"items,omitempty"`
}

// LoadColumn reads the column at pos in dim, or returns nil if none was stored.
func (s *LevelStore) LoadColumn(dim string, pos world.ChunkPos) (*Column, error) {
	blocks, err := s.db.Get(key(dim, pos, keyBlocks), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	col := &Column{Blocks: blocks, Entities: make(map[cube.Pos]*host.BlockEntity)}

	raw, err := s.db.Get(key(dim, pos, keyEntities), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return col, nil
	}
	if err != nil {
		return nil, err
	}
	var records []entityRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode block entities: %w", err)
	}
	for _, r := range records {
		col.Entities[cube.Pos(r.Pos)] = &host.BlockEntity{Kind: r.Kind, Items: r.Items}
	}
	return col, nil
}

// StoreColumn writes col at pos in dim.
func (s *LevelStore) StoreColumn(dim string, pos world.ChunkPos, col *Column) error {
	records := make([]entityRecord, 0, len(col.Entities))
	for p, be := range col.Entities {
		records = append(records, entityRecord{Pos: p, Kind: be.Kind, Items: be.Items})
	}
	slices.SortFunc(records, func(a, b entityRecord) int {
		return slices.Compare(a.Pos[:], b.Pos[:])
	})
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode block entities: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put(key(dim, pos, keyBlocks), col.Blocks)
	batch.Put(key(dim, pos, keyEntities), raw)
	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	s.saves.Add(1)
	return nil
}

// Saves returns the number of columns written since the store was opened.
func (s *LevelStore) Saves() int64 {
	return s.saves.Load()
}

// Close closes the database.
func (s *LevelStore) Close() error {
	return s.db.Close()
}

// encodeBlocks serializes the allocated sections of c: a little endian
// section count followed, per section, by its vertical index and 4096 runtime
// ids in x, z, y order.
func encodeBlocks(c *Chunk) []byte {
	ys := make([]int, 0, len(c.sections))
	for y := range c.sections {
		ys = append(ys, y)
	}
	slices.Sort(ys)

	buf := bytes.NewBuffer(make([]byte, 0, 2+len(ys)*(2+4096*4)))
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(ys)))
	ids := make([]uint32, 4096)
	for _, sy := range ys {
		_ = binary.Write(buf, binary.LittleEndian, int16(sy))
		for x := 0; x < 16; x++ {
			for z := 0; z < 16; z++ {
				for y := 0; y < 16; y++ {
					ids[x<<8|z<<4|y] = c.col.Block(uint8(x), int16(sy<<4+y), uint8(z), 0)
				}
			}
		}
		_ = binary.Write(buf, binary.LittleEndian, ids)
	}
	return buf.Bytes()
}

// decodeBlocks is the inverse of encodeBlocks.
func decodeBlocks(c *Chunk, data []byte) error {
	r := bytes.NewReader(data)
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read section count: %w", err)
	}
	ids := make([]uint32, 4096)
	for i := 0; i < int(n); i++ {
		var sy int16
		if err := binary.Read(r, binary.LittleEndian, &sy); err != nil {
			return fmt.Errorf("read section index: %w", err)
		}
		if int(sy) < c.w.r.Min()>>4 || int(sy) > c.w.r.Max()>>4 {
			return fmt.Errorf("section %d outside world range %v", sy, c.w.r)
		}
		if err := binary.Read(r, binary.LittleEndian, ids); err != nil {
			return fmt.Errorf("read section %d: %w", sy, err)
		}
		for j, rid := range ids {
			if rid == airRID {
				continue
			}
			x, z, y := j>>8, (j>>4)&15, j&15
			c.col.SetBlock(uint8(x), int16(int(sy)<<4+y), uint8(z), 0, rid)
		}
		c.sections[int(sy)] = struct{}{}
	}
	return nil
}
