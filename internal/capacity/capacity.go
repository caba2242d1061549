package capacity

import (
	"sync"

	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/errors"
)

// 名额账本操作。计数器的读改写必须在同一个开班实例的串行区内执行：
// 持久化路径上由 repository 的行锁事务保证，进程内再用 Guard 按
// (shift, date) 粒度串行，避免同实例事务在数据库层互相等待。

// Reserve 占一个座位。非候补请求优先占正选；正选满员时回落候补；
// 两者都满返回 NoVacancy。显式候补请求只在正选确实满员时成立。
func Reserve(occ *model.ShiftOccurrence, wantStandby bool) (model.SeatKind, error) {
	if !wantStandby && occ.FilledPrimary < occ.Vacancy {
		occ.FilledPrimary++
		return model.SeatKindPrimary, nil
	}

	if occ.FilledPrimary >= occ.Vacancy && occ.FilledStandby < occ.StandbyVacancy {
		occ.FilledStandby++
		return model.SeatKindStandby, nil
	}

	return "", errors.NoVacancy
}

// Release 归还一个座位。计数器不允许降到负数：重复归还是编程错误，
// 必须报 CapacityCorrupted 而不是悄悄钳位。
func Release(occ *model.ShiftOccurrence, seat model.SeatKind) error {
	switch seat {
	case model.SeatKindPrimary:
		if occ.FilledPrimary <= 0 {
			return errors.CapacityCorrupted
		}
		occ.FilledPrimary--
	case model.SeatKindStandby:
		if occ.FilledStandby <= 0 {
			return errors.CapacityCorrupted
		}
		occ.FilledStandby--
	default:
		return errors.CapacityCorrupted
	}
	return nil
}

// Promote 把一个候补占用转为正选占用（候补转正时调用）。
// 调用方必须已经释放了一个正选座位。
func Promote(occ *model.ShiftOccurrence) error {
	if occ.FilledStandby <= 0 {
		return errors.CapacityCorrupted
	}
	if occ.FilledPrimary >= occ.Vacancy {
		return errors.CapacityCorrupted
	}
	occ.FilledStandby--
	occ.FilledPrimary++
	return nil
}

// CheckInvariant 校验计数器约束，用于事务提交前的最后防线
func CheckInvariant(occ *model.ShiftOccurrence) error {
	if occ.FilledPrimary < 0 || occ.FilledPrimary > occ.Vacancy {
		return errors.CapacityCorrupted
	}
	if occ.FilledStandby < 0 || occ.FilledStandby > occ.StandbyVacancy {
		return errors.CapacityCorrupted
	}
	return nil
}

// Guard 按 (shift, date) 粒度的进程内互斥锁。
// 不同开班实例互不影响，可以完全并行。
type Guard struct {
	mu    sync.Mutex
	locks map[occurrenceKey]*sync.Mutex
}

type occurrenceKey struct {
	shiftID int64
	date    string
}

func NewGuard() *Guard {
	return &Guard{
		locks: make(map[occurrenceKey]*sync.Mutex),
	}
}

// Lock 锁住一个开班实例，返回解锁函数
func (g *Guard) Lock(shiftID int64, date string) func() {
	key := occurrenceKey{shiftID: shiftID, date: date}

	g.mu.Lock()
	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
