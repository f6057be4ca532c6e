package streak

import (
	"errors"
	"fmt"
	"time"

	"github.com/StoneJar/habit-stones-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidDateFormat 表示打卡日期不是合法的YYYY-MM-DD格式。
// 这是唯一会透传给调用方的用户输入错误。
var ErrInvalidDateFormat = errors.New("打卡日期格式无效，必须为YYYY-MM-DD")

// checkInDateLayout 是打卡日期的标准格式
const checkInDateLayout = "2006-01-02"

// ParseCheckInDate 将YYYY-MM-DD字符串解析为UTC零点的日期。
func ParseCheckInDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(checkInDateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// daysBetween 计算两个UTC零点日期之间相差的天数（later - earlier）。
func daysBetween(later, earlier time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}

// applyCheckIn 是连续打卡的核心状态机，对记录应用一次打卡。
// 它是纯函数：不访问数据库，方便直接测试全部分支。
//   - 连续日(+1天): CurrentStreak += 1
//   - 同一天: 计数不变，LastCheckInDate也不变
//   - 间隔超过1天或日期早于上次打卡: CurrentStreak重置为1
//
// 任何分支之后 LongestStreak = max(LongestStreak, CurrentStreak)。
func applyCheckIn(record *Streak, checkInDate time.Time) {
	if record.LastCheckInDate == nil {
		// 已有记录但从未打卡，视为首次打卡
		record.CurrentStreak = 1
		record.TotalCheckIns++
		record.LastCheckInDate = &checkInDate
	} else {
		switch diff := daysBetween(checkInDate, *record.LastCheckInDate); {
		case diff == 0:
			// 同一天重复打卡，幂等，不做任何改动
		case diff == 1:
			record.CurrentStreak++
			record.TotalCheckIns++
			record.LastCheckInDate = &checkInDate
		default:
			// 断档，或者日期早于上次打卡（回填场景同样按断档处理）
			record.CurrentStreak = 1
			record.TotalCheckIns++
			record.LastCheckInDate = &checkInDate
		}
	}

	if record.CurrentStreak > record.LongestStreak {
		record.LongestStreak = record.CurrentStreak
	}
}

// UpdateByCheckIn 根据一次打卡更新(userID, habitID)的连续打卡记录。
// 记录不存在时创建新记录（CurrentStreak = LongestStreak = 1）。
func UpdateByCheckIn(userID, habitID, checkInDateStr string) (*Streak, error) {
	checkInDate, err := ParseCheckInDate(checkInDateStr)
	if err != nil {
		return nil, err
	}

	var record Streak
	err = database.DB.Where("user_id = ? AND habit_id = ?", userID, habitID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = Streak{UserID: userID, HabitID: habitID}
	} else if err != nil {
		return nil, fmt.Errorf("查询连续打卡记录失败: %w", err)
	}

	applyCheckIn(&record, checkInDate)

	// 以(user_id, habit_id)为冲突键原子地写回，文档存储是唯一的串行化点
	saveErr := database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "habit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_streak", "longest_streak", "total_check_ins",
			"last_check_in_date", "updated_at",
		}),
	}).Create(&record).Error
	if saveErr != nil {
		return nil, fmt.Errorf("写入连续打卡记录失败: %w", saveErr)
	}

	return &record, nil
}

// GetStreak 返回(userID, habitID)的连续打卡记录。
// 记录不存在时返回零值记录（0, 0, 0, nil）——没有打卡本身是正常状态，不是错误。
func GetStreak(userID, habitID string) (*Streak, error) {
	var record Streak
	err := database.DB.Where("user_id = ? AND habit_id = ?", userID, habitID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Streak{UserID: userID, HabitID: habitID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询连续打卡记录失败: %w", err)
	}
	return &record, nil
}
