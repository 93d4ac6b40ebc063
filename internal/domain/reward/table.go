// Package reward содержит доменную модель наград за лидерборд WordQuest.
package reward

import "github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"

// ══════════════════════════════════════════════════════════════════════════════
// REWARD TABLES
// ══════════════════════════════════════════════════════════════════════════════

// tier определяет корзину рангов в таблице наград.
type tier int

const (
	tierFirst  tier = iota // ранг 1
	tierSecond             // ранг 2
	tierThird              // ранг 3
	tierTop10              // ранги 4-10
	tierNone               // ранг > 10: пустая выплата
)

// tierForRank возвращает корзину для ранга.
func tierForRank(rank leaderboard.Rank) tier {
	switch {
	case rank == 1:
		return tierFirst
	case rank == 2:
		return tierSecond
	case rank == 3:
		return tierThird
	case rank >= 4 && rank <= 10:
		return tierTop10
	default:
		return tierNone
	}
}

// rewardTables - неизменяемые таблицы выплат по периодам.
// Значения растут с длиной периода: дневные наименьшие, месячные
// наибольшие. Для all_time таблица не определена - распределение
// для этого периода не вызывается.
var rewardTables = map[leaderboard.PeriodType]map[tier]Payout{
	leaderboard.PeriodDaily: {
		tierFirst:  {Diamonds: 50, Emeralds: 25, XP: 200},
		tierSecond: {Diamonds: 35, Emeralds: 15, XP: 150},
		tierThird:  {Diamonds: 25, Emeralds: 10, XP: 100},
		tierTop10:  {Diamonds: 10, Emeralds: 5, XP: 50},
	},
	leaderboard.PeriodWeekly: {
		tierFirst:  {Diamonds: 150, Emeralds: 75, XP: 500},
		tierSecond: {Diamonds: 100, Emeralds: 50, XP: 400},
		tierThird:  {Diamonds: 75, Emeralds: 35, XP: 300},
		tierTop10:  {Diamonds: 50, Emeralds: 25, XP: 150},
	},
	leaderboard.PeriodMonthly: {
		tierFirst:  {Diamonds: 500, Emeralds: 250, XP: 2000},
		tierSecond: {Diamonds: 350, Emeralds: 150, XP: 1500},
		tierThird:  {Diamonds: 250, Emeralds: 100, XP: 1000},
		tierTop10:  {Diamonds: 100, Emeralds: 50, XP: 500},
	},
}

// RewardFor возвращает выплату для позиции в лидерборде указанного
// периода. Чистый табличный поиск без случайности и побочных эффектов.
//
// Второе значение - false, если для периода таблица не определена
// (all_time); в этом случае выплата пустая и распределение наград
// вызывать нельзя.
func RewardFor(rank leaderboard.Rank, period leaderboard.PeriodType) (Payout, bool) {
	table, ok := rewardTables[period]
	if !ok {
		return Payout{}, false
	}

	t := tierForRank(rank)
	if t == tierNone {
		return Payout{}, true
	}
	return table[t], true
}
