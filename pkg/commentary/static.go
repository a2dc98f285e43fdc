package commentary

import (
	"context"
	"sync"

	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/protocol"
)

var turnLines = []string{
	"Dằn chưa?",
	"Rút thêm lá nữa đi, sợ gì!",
	"Bài này mà dừng thì phí.",
	"Cẩn thận kẻo quắc nha!",
}

// Static comments without any network access, rotating through fixed lines.
type Static struct {
	mutex sync.Mutex
	next  int
}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) Comment(_ context.Context, request Request) string {
	if request.Phase == protocol.PhaseResolution {
		return "Hết ván, chung tiền nào!"
	}

	switch cards.Classify(request.PlayerHand) {
	case cards.XiBang:
		return "Xì Bàng! Nhà cái xin thua."
	case cards.XiDach:
		return "Xì Dách rồi, ăn chắc!"
	case cards.NguLinh:
		return "Ngũ Linh, hiếm lắm đấy!"
	case cards.Quac:
		return "Quắc rồi!"
	}

	if len(request.PlayerHand) == 0 {
		return Fallback
	}
	if request.PlayerScore < cards.MinPlayerScore {
		return "Non quá, rút tiếp đi!"
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	line := turnLines[s.next%len(turnLines)]
	s.next++
	return line
}
