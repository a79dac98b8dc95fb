package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash []byte             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func packUser(usr user.User) userDoc {
	return userDoc{
		Username:     usr.Username,
		PasswordHash: usr.PasswordHash,
		Role:         usr.Role,
		CreatedAt:    usr.CreatedAt,
	}
}

func (d userDoc) unpack() user.User {
	return user.User{
		ID:           keyID(d.ID),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

type courseDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	TeacherID   primitive.ObjectID `bson:"teacher_id"`
	CreateKey   string             `bson:"create_key"`
	CreatedAt   time.Time          `bson:"created_at"`

	// aggregation attachments
	TeacherName   string `bson:"teacher_name,omitempty"`
	EnrolledCount int    `bson:"enrolled_count,omitempty"`
}

func (d courseDoc) unpack() course.Course {
	return course.Course{
		ID:            keyID(d.ID),
		Title:         d.Title,
		Description:   d.Description,
		TeacherID:     keyID(d.TeacherID),
		CreateKey:     d.CreateKey,
		CreatedAt:     d.CreatedAt,
		TeacherName:   d.TeacherName,
		EnrolledCount: d.EnrolledCount,
	}
}

func unpackCourses(docs []courseDoc) []course.Course {
	courses := make([]course.Course, 0, len(docs))
	for _, d := range docs {
		courses = append(courses, d.unpack())
	}
	return courses
}

type enrollmentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"user_id"`
	CourseID   primitive.ObjectID `bson:"course_id"`
	EnrolledAt time.Time          `bson:"enrolled_at"`
}

type materialDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	CourseID    primitive.ObjectID `bson:"course_id"`
	Title       string             `bson:"title"`
	StoragePath string             `bson:"storage_path"`
	UploadedAt  time.Time          `bson:"uploaded_at"`
}

func (d materialDoc) unpack() course.Material {
	return course.Material{
		ID:          keyID(d.ID),
		CourseID:    keyID(d.CourseID),
		Title:       d.Title,
		StoragePath: d.StoragePath,
		UploadedAt:  d.UploadedAt,
	}
}

type attendanceDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	StudentID  primitive.ObjectID `bson:"student_id"`
	CourseID   primitive.ObjectID `bson:"course_id"`
	Date       string             `bson:"date"`
	Status     string             `bson:"status"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

func (d attendanceDoc) unpack() attendance.Attendance {
	return attendance.Attendance{
		ID:         keyID(d.ID),
		StudentID:  keyID(d.StudentID),
		CourseID:   keyID(d.CourseID),
		Date:       d.Date,
		Status:     d.Status,
		RecordedAt: d.RecordedAt,
	}
}

type postDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CourseID  primitive.ObjectID `bson:"course_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Content   string             `bson:"content"`
	Timestamp time.Time          `bson:"timestamp"`

	// aggregation attachments
	AuthorUsername string `bson:"author_username,omitempty"`
	ReplyCount     int    `bson:"reply_count,omitempty"`
}

func (d postDoc) unpack() forum.Post {
	return forum.Post{
		ID:             keyID(d.ID),
		CourseID:       keyID(d.CourseID),
		UserID:         keyID(d.UserID),
		Content:        d.Content,
		Timestamp:      d.Timestamp,
		AuthorUsername: d.AuthorUsername,
		ReplyCount:     d.ReplyCount,
	}
}

type replyDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PostID    primitive.ObjectID `bson:"post_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Content   string             `bson:"content"`
	Timestamp time.Time          `bson:"timestamp"`

	AuthorUsername string `bson:"author_username,omitempty"`
}

func (d replyDoc) unpack() forum.Reply {
	return forum.Reply{
		ID:             keyID(d.ID),
		PostID:         keyID(d.PostID),
		UserID:         keyID(d.UserID),
		Content:        d.Content,
		Timestamp:      d.Timestamp,
		AuthorUsername: d.AuthorUsername,
	}
}
